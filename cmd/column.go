// Handles the "dvfile column" command. This command exists solely to contain
// schema subcommands (create, delete).
package cmd

import (
	"github.com/spf13/cobra"
)

// columnCmd represents the column command
var columnCmd = &cobra.Command{
	Use:   "column",
	Short: "File column schema management",
	Long:  `Commands for provisioning and tearing down the file column that the transfer commands operate on.`,
}

func init() {
	rootCmd.AddCommand(columnCmd)
}
