package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var searchPath string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a semantic search against the remote index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchPath, "path", "", "optional path narrowing hint")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	setupLogging()

	e, ws, err := buildEngine()
	if err != nil {
		return err
	}

	results, err := e.Search(cmd.Context(), ws, args[0], searchPath)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
