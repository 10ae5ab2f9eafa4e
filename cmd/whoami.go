// The 'dvfile whoami' command. Executes the WhoAmI message as a connection
// smoke test.
package cmd

import (
	"context"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the authenticated caller ID",
	Long:  `Executes the WhoAmI message against the configured service. Useful for checking connectivity and credentials before running anything that provisions state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp dataverse.WhoAmIResponse
		if err := dvManager.Service.Execute(context.Background(), dataverse.WhoAmIRequest{}, &resp); err != nil {
			return errors.Wrap(err, "WhoAmI failed")
		}
		dvManager.Logger.Info("Connected as user: " + resp.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
