/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skadidb/skadi/pkg/api"
	"github.com/skadidb/skadi/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the SkadiDB REST API server over a directory of archives.

Configuration comes from the config file written by 'skadi init'; flags
override individual values.

Examples:
  skadi serve
  skadi serve --config ./skadi.yaml --port 9200
  skadi serve --archive-dir ./archives --api-key mysecretkey`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		}

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("archive-dir") {
			cfg.ArchiveDir, _ = cmd.Flags().GetString("archive-dir")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		if cfg.APIKey == "" || cfg.APIKey == "auto" {
			return fmt.Errorf("no API key configured (run 'skadi init' or pass --api-key)")
		}

		return api.StartServer(api.ServerConfig{
			Port:         cfg.Port,
			Bind:         cfg.Bind,
			APIKey:       cfg.APIKey,
			ArchiveDir:   cfg.ArchiveDir,
			CacheDir:     cfg.Cache.Dir,
			CacheEnabled: cfg.Cache.Enabled,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Path to the config file")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind")
	serveCmd.Flags().String("archive-dir", "./archives", "Directory containing archives")
	serveCmd.Flags().String("api-key", "", "API key for authentication")
}
