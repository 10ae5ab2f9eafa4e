// Handles the "dvfile column delete" command
package cmd

import (
	"context"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var columnDeleteCmdConfig struct {
	entity string
	name   string
}

var columnDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a file column from an entity",
	Long:  `Deletes the column and any payloads stored under it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := columnDeleteCmdConfig.entity
		if entity == "" {
			entity = dvManager.Cfg.GetString("entity")
		}

		req := dataverse.DeleteColumnRequest{
			Entity:     entity,
			SchemaName: columnDeleteCmdConfig.name,
		}
		if err := dvManager.Service.Execute(context.Background(), req, &dataverse.DeleteColumnResponse{}); err != nil {
			return errors.Wrap(err, "Column delete failed")
		}
		dvManager.Logger.Info("Deleted file column: " + entity + "." + columnDeleteCmdConfig.name)
		return nil
	},
}

func init() {
	columnCmd.AddCommand(columnDeleteCmd)

	columnDeleteCmd.Flags().StringVarP(&columnDeleteCmdConfig.entity, "entity", "e", "", "entity holding the column (defaults to the configured entity)")
	columnDeleteCmd.Flags().StringVarP(&columnDeleteCmdConfig.name, "name", "n", "sample_filecolumn", "schema name of the column to delete")
}
