package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skadidb/skadi/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with a generated API key",
	Long: `Create the SkadiDB config file, generating a fresh API key for the
REST server. Refuses to overwrite an existing config unless --force is
given.

Example:
  skadi init --archive-dir ./archives`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		archiveDir, _ := cmd.Flags().GetString("archive-dir")
		force, _ := cmd.Flags().GetBool("force")

		if config.ConfigExists(configPath) && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
		}

		cfg, err := config.BootstrapConfig(configPath, archiveDir)
		if err != nil {
			return err
		}

		fmt.Printf("Config written to %s\n", configPath)
		fmt.Printf("Archive directory: %s\n", cfg.ArchiveDir)
		fmt.Printf("API key: %s\n", cfg.APIKey)
		fmt.Println("Keep the API key safe; the server requires it on every request.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("config", "", "Path to the config file")
	initCmd.Flags().String("archive-dir", "", "Directory containing archives")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
}
