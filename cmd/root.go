// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gh-status",
	Short: "A CLI tool to publish a GitHub user's public activity as static snapshots.",
	Long: `gh-status reads a GitHub user's public repositories and event stream and
writes machine-readable TOML snapshots (inventory, TODOs, 7 and 30 day
activity), each with a small HTML viewer, ready for static hosting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits with status 1 on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	// Errors are silenced since commands log their own failures through zerolog.
	// Flag parsing errors happen before any logger exists, so print those here.
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln("Error:", err)
		return err
	})
}
