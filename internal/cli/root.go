// Package cli is a cobra-based command shell over internal/engine, for
// manual testing and debugging. Each subcommand builds one Engine from
// flags/env and drives a single Workspace through it.
package cli

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/managed-index/indexctl/internal/logging"
)

var (
	flagWorkspace string
	flagOrgID     string
	flagProjectID string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "indexctl",
	Short: "indexctl drives the managed codebase indexing engine",
	Long: `indexctl is a thin CLI shell over the managed codebase indexing
engine: it starts/stops indexing a workspace, runs searches, and reports
lifecycle state. The engine is designed to be embedded in an editor host
process; this CLI exists for local testing and debugging.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "workspace root (a git checkout)")
	rootCmd.PersistentFlags().StringVar(&flagOrgID, "org", "", "organization id")
	rootCmd.PersistentFlags().StringVar(&flagProjectID, "project", "", "project id")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
}

// Execute runs the root command. It's the sole entry point called from
// cmd/indexctl's main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() {
	if flagVerbose {
		logging.SetLevel(charmlog.DebugLevel)
	}
}
