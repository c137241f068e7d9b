package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/supplylens/config"
	"github.com/spektr-org/supplylens/engine"
)

// ============================================================================
// CONFIG — show and persist settings without loading the dataset
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set supplylens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk.\n\nKeys: " + strings.Join(config.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]

		c, err := loadForEdit()
		if err != nil {
			return err
		}
		if err := config.Set(c, key, val); err != nil {
			return err
		}
		if key == "widgets" {
			if _, err := engine.SelectWidgets(c.Widgets...); err != nil {
				return err
			}
		}
		if err := config.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// loadForEdit loads the config to modify. A --config path that does not
// exist yet starts from the defaults.
func loadForEdit() (*config.Config, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return config.Defaults(), nil
		}
	}
	return config.Load(cfgFile)
}
