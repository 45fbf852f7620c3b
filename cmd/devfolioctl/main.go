package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khoahotran/devfolio/internal/config"
	"github.com/khoahotran/devfolio/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "devfolioctl",
	Short: "Administer a devfolio deployment",
	Long: `Owner tooling for devfolio.

Available subcommands:
  hash-password - Print a bcrypt hash for auth.owner_password_hash
  seed          - Write the sample portfolio to the configured storage
  migrate       - Apply or roll back the Postgres schema`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory holding config.yaml")
	rootCmd.AddCommand(hashPasswordCmd, seedCmd, migrateCmd)
}

func loadConfig() (config.Config, logger.Logger, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, logger.NewZapLogger(cfg.App.Env), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
