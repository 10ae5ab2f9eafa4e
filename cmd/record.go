// Handles the "dvfile record" command. Container for record subcommands
// (create, delete).
package cmd

import (
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record management",
	Long:  `Commands for creating and deleting the record whose file column the transfer commands target.`,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
