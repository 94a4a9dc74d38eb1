package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tectonic/internal/tectonic"
)

type rootOptions struct {
	storageDir string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tectonic",
		Short: "Tectonic is a multi-tenant blob store",
		Long: `Tectonic stores opaque byte payloads scoped to registered tenants.

Content lives on the local filesystem with SHA-256 sidecar checksums that
are re-verified on every read; blob metadata and tenant membership live in
embedded key-value indexes under the same storage directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			if !cmd.Flags().Changed("storage-dir") && viper.IsSet("storage_dir") {
				opts.storageDir = viper.GetString("storage_dir")
			}
			if !cmd.Flags().Changed("log-level") && viper.IsSet("log_level") {
				opts.logLevel = viper.GetString("log_level")
			}
			return setupLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.storageDir, "storage-dir", "s", "storage", "path to the storage directory")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRegisterTenantCmd(opts),
		newListTenantsCmd(opts),
		newPutCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// initConfig reads in an optional config file and TECTONIC_* environment
// variables.
func initConfig() {
	viper.SetConfigName("tectonic")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.tectonic")
	viper.SetEnvPrefix("tectonic")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("Using config file", "path", viper.ConfigFileUsed())
	}
}

// openStore opens the coordinator rooted at the configured storage
// directory. The caller is responsible for closing it.
func openStore(opts *rootOptions) (*tectonic.Coordinator, error) {
	// Resolve to an absolute path for easier debugging.
	abs, err := filepath.Abs(opts.storageDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	return tectonic.Open(tectonic.Config{RootDir: abs})
}
