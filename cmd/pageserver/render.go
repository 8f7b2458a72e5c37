package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"page-server/web"
)

var renderOut string

// renderCmd writes the page exactly as served; $(date) stays literal.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the page markup to stdout or a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderOut == "" {
			return writePage(cmd.OutOrStdout())
		}

		f, err := os.Create(renderOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", renderOut, err)
		}
		if err := writePage(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", renderOut, err)
		}

		logrus.WithFields(logrus.Fields{
			"file":  renderOut,
			"bytes": len(web.IndexHTML),
		}).Info("Page written")
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default stdout)")
}

func writePage(w io.Writer) error {
	if _, err := w.Write(web.IndexHTML); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
