// Handles the "dvfile column create" command
package cmd

import (
	"context"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var columnCreateCmdConfig struct {
	entity    string
	name      string
	display   string
	maxSizeKB int
}

var columnCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a file column on an entity",
	Long: `Creates a file column with the given schema name. Payloads committed to the
column may not exceed the configured maximum size.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := columnCreateCmdConfig.entity
		if entity == "" {
			entity = dvManager.Cfg.GetString("entity")
		}

		display := columnCreateCmdConfig.display
		if display == "" {
			display = columnCreateCmdConfig.name
		}

		req := dataverse.CreateFileColumnRequest{
			Entity:      entity,
			SchemaName:  columnCreateCmdConfig.name,
			DisplayName: display,
			MaxSizeKB:   columnCreateCmdConfig.maxSizeKB,
		}
		if err := dvManager.Service.Execute(context.Background(), req, &dataverse.CreateFileColumnResponse{}); err != nil {
			return errors.Wrap(err, "Column create failed")
		}
		dvManager.Logger.Info("Created file column: " + entity + "." + columnCreateCmdConfig.name)
		return nil
	},
}

func init() {
	columnCmd.AddCommand(columnCreateCmd)

	columnCreateCmd.Flags().StringVarP(&columnCreateCmdConfig.entity, "entity", "e", "", "entity to add the column to (defaults to the configured entity)")
	columnCreateCmd.Flags().StringVarP(&columnCreateCmdConfig.name, "name", "n", "sample_filecolumn", "schema name for the new column")
	columnCreateCmd.Flags().StringVarP(&columnCreateCmdConfig.display, "display", "d", "", "display name (defaults to the schema name)")
	columnCreateCmd.Flags().IntVarP(&columnCreateCmdConfig.maxSizeKB, "max-size-kb", "m", 0, "maximum payload size in KB (0 means the platform default)")
}
