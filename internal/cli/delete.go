package cli

import "github.com/spf13/cobra"

var deleteBranchCmd = &cobra.Command{
	Use:   "delete-branch",
	Short: "Delete all server-side indexed data for the workspace's current branch",
	RunE:  runDeleteBranch,
}

var deleteProjectCmd = &cobra.Command{
	Use:   "delete-project",
	Short: "Delete all server-side indexed data for the project, across every branch",
	RunE:  runDeleteProject,
}

func init() {
	rootCmd.AddCommand(deleteBranchCmd)
	rootCmd.AddCommand(deleteProjectCmd)
}

func runDeleteBranch(cmd *cobra.Command, args []string) error {
	setupLogging()
	e, ws, err := buildEngine()
	if err != nil {
		return err
	}
	return e.DeleteBranch(cmd.Context(), ws)
}

func runDeleteProject(cmd *cobra.Command, args []string) error {
	setupLogging()
	e, ws, err := buildEngine()
	if err != nil {
		return err
	}
	return e.DeleteProject(cmd.Context(), ws)
}
