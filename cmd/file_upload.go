// Handles the "dvfile file upload" command
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/fileblocks"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fileUploadCmdConfig struct {
	entity      string
	recordID    string
	column      string
	source      string
	mimeType    string
	concurrency int
}

var fileUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a file into a file column",
	Long: `Splits the source file into fixed-size blocks, uploads each block under the
session's continuation token, and commits the assembled block list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := fileUploadCmdConfig.entity
		if entity == "" {
			entity = dvManager.Cfg.GetString("entity")
		}

		src, err := os.Open(fileUploadCmdConfig.source)
		if err != nil {
			return errors.Wrap(err, "Failed to open source file")
		}
		defer src.Close()

		opts := []fileblocks.UploadOption{}
		if fileUploadCmdConfig.mimeType != "" {
			opts = append(opts, fileblocks.WithMimeType(fileUploadCmdConfig.mimeType))
		}
		if fileUploadCmdConfig.concurrency > 1 {
			opts = append(opts, fileblocks.WithUploadConcurrency(fileUploadCmdConfig.concurrency))
		}

		uploader := fileblocks.NewUploader(dvManager.Service,
			dvManager.Logger.WithField("module", "fileblocks.upload"), opts...)

		ref := dataverse.FileRef{
			Entity:   entity,
			RecordID: fileUploadCmdConfig.recordID,
			Column:   fileUploadCmdConfig.column,
		}
		commit, err := uploader.Upload(context.Background(), ref,
			filepath.Base(fileUploadCmdConfig.source), src)
		if err != nil {
			return errors.Wrap(err, "Upload failed")
		}

		dvManager.Logger.Info("Uploaded file: " + commit.FileID)
		return nil
	},
}

func init() {
	fileCmd.AddCommand(fileUploadCmd)

	fileUploadCmd.Flags().StringVarP(&fileUploadCmdConfig.entity, "entity", "e", "", "entity of the target record (defaults to the configured entity)")
	fileUploadCmd.Flags().StringVarP(&fileUploadCmdConfig.recordID, "record-id", "r", "", "record to store the file on")
	fileUploadCmd.Flags().StringVarP(&fileUploadCmdConfig.column, "column", "c", "sample_filecolumn", "schema name of the file column")
	fileUploadCmd.Flags().StringVarP(&fileUploadCmdConfig.source, "source", "s", "", "path of the file to upload")
	fileUploadCmd.Flags().StringVarP(&fileUploadCmdConfig.mimeType, "mime", "m", "", "MIME type to record (detected from content if omitted)")
	fileUploadCmd.Flags().IntVarP(&fileUploadCmdConfig.concurrency, "concurrency", "j", 1, "maximum blocks in flight at once")
	fileUploadCmd.MarkFlagRequired("record-id")
	fileUploadCmd.MarkFlagRequired("source")
}
