package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Explain how to stop an active indexctl session",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("indexctl has no background daemon: interrupt (Ctrl-C) the running 'indexctl start' process to stop it cleanly.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
