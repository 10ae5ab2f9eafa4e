// Handles the "dvfile file delete" command
package cmd

import (
	"context"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fileDeleteCmdConfig struct {
	entity   string
	recordID string
	column   string
	fileID   string
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stored file",
	Long: `Deletes the payload stored in a file column. Takes either the file ID
directly, or a record/column pair to resolve the ID through the service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		fileID := fileDeleteCmdConfig.fileID
		if fileID == "" {
			if fileDeleteCmdConfig.recordID == "" {
				return errors.New("either --file-id or --record-id is required")
			}
			entity := fileDeleteCmdConfig.entity
			if entity == "" {
				entity = dvManager.Cfg.GetString("entity")
			}

			// The download-init response carries the file ID; we never pull
			// any blocks.
			var initResp dataverse.InitializeFileBlocksDownloadResponse
			initReq := dataverse.InitializeFileBlocksDownloadRequest{
				Entity:   entity,
				RecordID: fileDeleteCmdConfig.recordID,
				Column:   fileDeleteCmdConfig.column,
			}
			if err := dvManager.Service.Execute(ctx, initReq, &initResp); err != nil {
				return errors.Wrap(err, "Failed to resolve file ID")
			}
			fileID = initResp.FileID
		}

		req := dataverse.DeleteFileRequest{FileID: fileID}
		if err := dvManager.Service.Execute(ctx, req, &dataverse.DeleteFileResponse{}); err != nil {
			return errors.Wrap(err, "File delete failed")
		}
		dvManager.Logger.Info("Deleted file: " + fileID)
		return nil
	},
}

func init() {
	fileCmd.AddCommand(fileDeleteCmd)

	fileDeleteCmd.Flags().StringVarP(&fileDeleteCmdConfig.entity, "entity", "e", "", "entity of the record (defaults to the configured entity)")
	fileDeleteCmd.Flags().StringVarP(&fileDeleteCmdConfig.recordID, "record-id", "r", "", "record holding the file")
	fileDeleteCmd.Flags().StringVarP(&fileDeleteCmdConfig.column, "column", "c", "sample_filecolumn", "schema name of the file column")
	fileDeleteCmd.Flags().StringVarP(&fileDeleteCmdConfig.fileID, "file-id", "f", "", "ID of the stored file (skips the record/column lookup)")
}
