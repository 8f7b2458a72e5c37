package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"page-server/internal/page"
	"page-server/web"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the page structure",
	Long: `Verify the embedded page:

  - the markup is well formed
  - it has exactly three feature blocks with the expected titles
  - the footer reads "Generated on: $(date)" with the token unexpanded`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := page.Verify(web.IndexHTML); err != nil {
		return fmt.Errorf("page check failed: %w", err)
	}

	info, err := page.Parse(web.IndexHTML)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:  %s\n", info.Title)
	fmt.Fprintf(out, "Size:   %d bytes\n", info.Size)
	fmt.Fprintln(out, strings.Repeat("─", 40))
	for _, f := range info.Features {
		fmt.Fprintf(out, "  %s\n    %s\n", f.Title, f.Description)
	}
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintf(out, "Footer: %s\n", info.Footer)
	fmt.Fprintln(out, "OK")
	return nil
}
