package cli

import (
	"fmt"

	"github.com/agentx-labs/wsgen/internal/branding"
	"github.com/agentx-labs/wsgen/internal/config"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write ` + branding.DisplayName() + ` configuration stored at ~/` + branding.HomeDir() + `/config.yaml.

Keys:
  ` + config.KeyDirectory + `     manifest | derived
  ` + config.KeyFormat + `        yaml | json
  ` + config.KeyDerivedRoot + `  root of the derived directory
  ` + config.KeyVerbosity + `           0 warn, 1 info, 2 debug
  ` + config.KeyLogJSON + `                JSON log output`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateSetting(key, value); err != nil {
			return err
		}
		if err := config.Set(key, value); err != nil {
			return errors.Wrapf(err, "setting config key %q", key)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

// validateSetting rejects values the generator would refuse later.
func validateSetting(key, value string) error {
	var err error
	switch key {
	case config.KeyDirectory:
		_, err = config.ParseDirectory(value)
	case config.KeyFormat:
		_, err = config.ParseFormat(value)
	}
	return err
}
