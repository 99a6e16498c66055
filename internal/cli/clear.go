package cli

import "github.com/spf13/cobra"

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Stop any active session, delete the branch's remote index, and reset the local cache",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	setupLogging()

	e, ws, err := buildEngine()
	if err != nil {
		return err
	}
	return e.Clear(cmd.Context(), ws)
}
