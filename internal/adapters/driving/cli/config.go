package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Inspect and initialise the TOML configuration file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Stores a single configuration value. Numbers and booleans are stored
as TOML numbers and booleans; everything else as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite existing settings")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if configStore == nil || writeDefaults == nil {
		return errors.New("config store not configured")
	}
	if len(configStore.Keys()) > 0 && !configInitForce {
		return errors.New("configuration already exists (use --force to overwrite)")
	}

	if err := writeDefaults(domain.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	cmd.Printf("Wrote default configuration to %s\n", configStore.Path())
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Println("No configuration stored; defaults apply.")
		return nil
	}
	for _, k := range keys {
		v, _ := configStore.Get(k)
		cmd.Printf("%s = %v\n", k, v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], parseValue(args[1])
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %v\n", key, value)

	if loadConfig != nil {
		if _, err := loadConfig(); err != nil {
			cmd.PrintErrf("Warning: %v\n", err)
		}
	}
	return nil
}

// parseValue keeps numbers and booleans typed so the TOML file stays typed.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil && (strings.EqualFold(s, "true") || strings.EqualFold(s, "false")) {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
