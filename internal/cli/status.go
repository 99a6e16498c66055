package cli

import "github.com/spf13/cobra"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the workspace's current indexing state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	setupLogging()

	e, ws, err := buildEngine()
	if err != nil {
		return err
	}

	printState("status", e.State(cmd.Context(), ws))
	return nil
}
