// Handles the "dvfile file download" command
package cmd

import (
	"context"
	"os"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/fileblocks"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fileDownloadCmdConfig struct {
	entity   string
	recordID string
	column   string
	output   string
}

var fileDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a file column payload",
	Long: `Rebuilds the stored file block by block, walking an offset/length cursor
under the session's continuation token. With no --output the file keeps its
stored name in the working directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := fileDownloadCmdConfig.entity
		if entity == "" {
			entity = dvManager.Cfg.GetString("entity")
		}

		downloader := fileblocks.NewDownloader(dvManager.Service,
			dvManager.Logger.WithField("module", "fileblocks.download"))

		ref := dataverse.FileRef{
			Entity:   entity,
			RecordID: fileDownloadCmdConfig.recordID,
			Column:   fileDownloadCmdConfig.column,
		}

		// We don't know the stored file name until the session is open, so
		// buffer through a temp file when no output path was given.
		outPath := fileDownloadCmdConfig.output
		tmpPath := outPath
		if tmpPath == "" {
			tmpPath = ".dvfile-download.tmp"
		}
		out, err := os.Create(tmpPath)
		if err != nil {
			return errors.Wrap(err, "Failed to create output file")
		}

		info, err := downloader.Download(context.Background(), ref, out)
		out.Close()
		if err != nil {
			os.Remove(tmpPath)
			return errors.Wrap(err, "Download failed")
		}

		if outPath == "" {
			outPath = info.FileName
			if err := os.Rename(tmpPath, outPath); err != nil {
				return errors.Wrap(err, "Failed to move downloaded file into place")
			}
		}

		dvManager.Logger.Info("Downloaded file to: " + outPath)
		return nil
	},
}

func init() {
	fileCmd.AddCommand(fileDownloadCmd)

	fileDownloadCmd.Flags().StringVarP(&fileDownloadCmdConfig.entity, "entity", "e", "", "entity of the record (defaults to the configured entity)")
	fileDownloadCmd.Flags().StringVarP(&fileDownloadCmdConfig.recordID, "record-id", "r", "", "record holding the file")
	fileDownloadCmd.Flags().StringVarP(&fileDownloadCmdConfig.column, "column", "c", "sample_filecolumn", "schema name of the file column")
	fileDownloadCmd.Flags().StringVarP(&fileDownloadCmdConfig.output, "output", "o", "", "path to write the file to (defaults to the stored file name)")
	fileDownloadCmd.MarkFlagRequired("record-id")
}
