// Handles the "dvfile record create" command
package cmd

import (
	"context"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var recordCreateCmdConfig struct {
	entity     string
	attributes string
}

var recordCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a record to hang a file on",
	Long: `Creates a record of the configured entity and prints its ID. The ID is what
the file transfer commands take as --record-id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := recordCreateCmdConfig.entity
		if entity == "" {
			entity = dvManager.Cfg.GetString("entity")
		}

		var resp dataverse.CreateRecordResponse
		req := dataverse.CreateRecordRequest{
			Entity:     entity,
			Attributes: parseKeyValue(recordCreateCmdConfig.attributes),
		}
		if err := dvManager.Service.Execute(context.Background(), req, &resp); err != nil {
			return errors.Wrap(err, "Record create failed")
		}
		dvManager.Logger.Info("Created record: " + entity + "(" + resp.RecordID + ")")
		return nil
	},
}

func init() {
	recordCmd.AddCommand(recordCreateCmd)

	recordCreateCmd.Flags().StringVarP(&recordCreateCmdConfig.entity, "entity", "e", "", "entity to create (defaults to the configured entity)")
	recordCreateCmd.Flags().StringVarP(&recordCreateCmdConfig.attributes, "attributes", "a", "", "record attributes: name1=value1,name2=value2")
}
