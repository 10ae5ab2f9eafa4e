// Handles the "dvfile record delete" command
package cmd

import (
	"context"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var recordDeleteCmdConfig struct {
	entity   string
	recordID string
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a record",
	Long:  `Deletes the record and any file payloads stored on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := recordDeleteCmdConfig.entity
		if entity == "" {
			entity = dvManager.Cfg.GetString("entity")
		}

		req := dataverse.DeleteRecordRequest{
			Entity:   entity,
			RecordID: recordDeleteCmdConfig.recordID,
		}
		if err := dvManager.Service.Execute(context.Background(), req, &dataverse.DeleteRecordResponse{}); err != nil {
			return errors.Wrap(err, "Record delete failed")
		}
		dvManager.Logger.Info("Deleted record: " + entity + "(" + recordDeleteCmdConfig.recordID + ")")
		return nil
	},
}

func init() {
	recordCmd.AddCommand(recordDeleteCmd)

	recordDeleteCmd.Flags().StringVarP(&recordDeleteCmdConfig.entity, "entity", "e", "", "entity of the record (defaults to the configured entity)")
	recordDeleteCmd.Flags().StringVarP(&recordDeleteCmdConfig.recordID, "record-id", "r", "", "ID of the record to delete")
	recordDeleteCmd.MarkFlagRequired("record-id")
}
