// Root command for the propstore CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/stageware/propstore/internal/paths"
	"github.com/stageware/propstore/pkg/propstore"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagNamespace string
	flagJSON      bool
	flagVerbose   bool
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands can
// use them.
var (
	configDataDir   string
	configBackend   string
	configNamespace string
)

var rootCmd = &cobra.Command{
	Use:   "propstore",
	Short: "Propstore is a fake-backend entity store for app mockups",
	Long: `Propstore manages namespaced collections of mock entities (orders,
restaurants, users, ...) so clickable prototypes can run against realistic
data without a real server.`,
	Version:      propstore.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configBackend = cfg.GetString(cfgKeyBackend)
		configNamespace = cfg.GetString(cfgKeyNamespace)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.propstore)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.propstore-db)")
	rootCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "store namespace (default: \"default\")")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log store internals to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(syncCmd)
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > PROPSTORE_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > PROPSTORE_CONFIG_DIR env > default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveNamespace returns the active namespace: flag > config.yaml > "default".
func resolveNamespace() string {
	if flagNamespace != "" {
		return flagNamespace
	}
	if configNamespace != "" {
		return configNamespace
	}
	return "default"
}

// resolveBackend returns the persistence backend: config.yaml > jsonl.
func resolveBackend() string {
	if configBackend != "" {
		return configBackend
	}
	return defaultBackend
}
