package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"agendum/internal/config"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the Agendum configuration file.`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Dump fully resolved configuration",
	Long:  `Display current configuration with all defaults applied and environment variables resolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration",
	Long:  `Create a default configuration file at $HOME/.agendum/config.yaml if it doesn't exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		configDir := filepath.Join(home, ".agendum")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configPath := filepath.Join(configDir, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config already exists at %s", configPath)
		}

		defaults := config.Config{
			Server: config.ServerConfig{
				Port:            config.DefaultServerPort,
				LogLevel:        config.DefaultServerLogLevel,
				ReadTimeout:     config.DefaultServerReadTimeout,
				WriteTimeout:    config.DefaultServerWriteTimeout,
				ShutdownTimeout: config.DefaultServerShutdownTimeout,
			},
			Store: config.StoreConfig{
				Path:         config.DefaultStorePath,
				LockTimeout:  config.DefaultStoreLockTimeout,
				LockRetry:    config.DefaultStoreLockRetry,
				LockMaxRetry: config.DefaultStoreLockMaxRetry,
			},
			Dedup:   config.DedupConfig{TTL: config.DefaultDedupTTL},
			Janitor: config.JanitorConfig{Schedule: config.DefaultJanitorSchedule},
		}

		data, err := yaml.Marshal(defaults)
		if err != nil {
			return fmt.Errorf("failed to encode defaults: %w", err)
		}

		if err := atomic.WriteFile(configPath, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Config initialized at %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configInitCmd)
}
