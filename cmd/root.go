// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dvmgr"
	"github.com/spf13/cobra"
)

var cfgFile string

var dvManager *dvmgr.DvManager

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dvfile",
	Short: "File column block transfer sample",
	Long: `Demonstrates uploading, downloading, and deleting large binary payloads
stored in a file column of a Dataverse-style record, using chunked block
transfer. Runs against a hosted environment or a built-in local emulation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		mgrArgs := map[string]interface{}{}
		if cfgFile != "" {
			mgrArgs["config-file"] = cfgFile
		}

		var err error
		dvManager, err = dvmgr.NewManager(mgrArgs)
		if err != nil {
			fmt.Printf("Failed to initialize dvfile manager: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		dvManager.Destroy()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if dvManager == nil || dvManager.Logger == nil {
			fmt.Printf("%v\n", err)
		} else {
			dvManager.Logger.Error(err)
		}
		os.Exit(1)
	}
}

func parseKeyValue(s string) map[string]interface{} {

	if s == "" {
		return nil
	}

	result := make(map[string]interface{})
	for _, pair := range strings.Split(s, ",") {
		keyValue := strings.Split(pair, "=")
		if len(keyValue) == 2 {
			result[keyValue[0]] = keyValue[1]
		}
	}

	return result
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/dvfile.yaml)")
}
