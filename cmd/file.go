// Handles the "dvfile file" command. Container for the block transfer
// subcommands (upload, download, delete).
package cmd

import (
	"github.com/spf13/cobra"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "File column payload transfer",
	Long:  `Commands for moving binary payloads in and out of a file column using chunked block transfer.`,
}

func init() {
	rootCmd.AddCommand(fileCmd)
}
