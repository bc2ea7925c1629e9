// Package main provides the aeoscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "aeoscope",
		Short: "Answer engine optimization audits for websites",
		Long: `AEOScope fetches a page, gathers crawler and structured-data evidence,
and scores how visible the page is to AI answer engines.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newAuditCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
