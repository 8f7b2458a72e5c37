package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"page-server/pkg/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "pageserver",
	Short:         "Serve and inspect the inference-engine-vllm page",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return cfg.ConfigureLogging()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, renderCmd, checkCmd)
}

func main() {
	// Configure logrus before the environment is read
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
