package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oblo-platform/oblo/internal/config"
	"github.com/oblo-platform/oblo/pkg/logger"
	"github.com/oblo-platform/oblo/pkg/types"
	"github.com/oblo-platform/oblo/pkg/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oblo",
		Short: "Oblo - mapping platform backend",
		Long: `Oblo is the backend of a collaborative mapping platform.

It loads its settings from configs/.{ENV}.env and the process environment,
configures named loggers from a logging configuration file and serves the
HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("env-dir", config.DefaultConfigDir, "directory holding the .{env}.env files")
	cmd.PersistentFlags().String("log-config", "", "logging configuration file (default is $LOG_CONFIG_PATH or configs/logger_config.yml)")

	cmd.AddCommand(newServeCmd(), newLogCmd(), newConfigCmd(), newVersionCmd())
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Bind flags to viper
	viper.BindPFlag("env_dir", rootCmd.PersistentFlags().Lookup("env-dir"))
	viper.BindPFlag("log_config", rootCmd.PersistentFlags().Lookup("log-config"))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("OBLO") // OBLO_ENV_DIR, OBLO_LOG_CONFIG
	viper.AutomaticEnv()
}

// envDir returns the settings directory from --env-dir or OBLO_ENV_DIR
func envDir(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("env-dir"); f != nil && f.Changed {
		return f.Value.String()
	}
	if dir := viper.GetString("env_dir"); dir != "" {
		return dir
	}
	return config.DefaultConfigDir
}

// logConfigPath resolves the logging configuration file the way serve does.
// The flag wins over OBLO_LOG_CONFIG, then LOG_CONFIG_PATH from the
// environment or the env file. Settings are read but not validated, so log
// commands work with an incomplete env file.
func logConfigPath(cmd *cobra.Command) string {
	if path, ok := logConfigOverride(cmd); ok {
		return path
	}
	if settings, _, err := config.NewLoader(envDir(cmd)).Load(); err == nil && settings.LogConfigPath != "" {
		return settings.LogConfigPath
	}
	return utils.GetEnvWithDefault("LOG_CONFIG_PATH", types.DefaultLogConfigPath)
}

// loadSettings loads and validates the environment settings
func loadSettings(cmd *cobra.Command) (*config.Manager, error) {
	configManager := config.NewManager(envDir(cmd), logger.GetDefaultLogger())
	if err := configManager.Load(); err != nil {
		return nil, err
	}
	return configManager, nil
}

// newLogging builds the logging manager from the configuration file at path
func newLogging(cmd *cobra.Command, path string) (*logger.Manager, error) {
	cfg, err := logger.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load logging configuration: %w", err)
	}

	manager, err := logger.NewManager(cfg,
		logger.WithStdout(cmd.OutOrStdout()),
		logger.WithStderr(cmd.ErrOrStderr()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return manager, nil
}
