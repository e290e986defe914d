package main

import (
	"fmt"

	"github.com/fgeck/supadb/internal/config"
	"github.com/fgeck/supadb/internal/services/prompt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Resolve and print the configuration without running anything",
	Long: `Resolve the connection settings from the environment (and an
optional .env file) and print a summary. No password is prompted for and
no external tool is invoked.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(prompt.New())
	if err := loadEnvFile(loader); err != nil {
		return err
	}

	settings, err := loader.LoadStatic()
	if err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Connection:")
	fmt.Printf("  Host: %s\n", settings.Connection.Host)
	fmt.Printf("  Port: %s\n", settings.Connection.Port)
	fmt.Printf("  User: %s\n", settings.Connection.Username)
	fmt.Printf("  Database: %s\n", settings.Connection.Database)
	if settings.Connection.Password != "" {
		fmt.Printf("  Password: (configured)\n")
	} else {
		fmt.Printf("  Password: (will be prompted)\n")
	}
	fmt.Println()
	fmt.Println("Backup:")
	fmt.Printf("  Output directory: %s\n", settings.Backup.OutputDir)
	fmt.Printf("  Compress: %v\n", settings.Backup.Compress)
	fmt.Println()
	fmt.Println("Restore:")
	fmt.Printf("  Timeout: %s\n", settings.Restore.Timeout)
	if settings.Restore.DefaultFile != "" {
		fmt.Printf("  Default file: %s\n", settings.Restore.DefaultFile)
	} else {
		fmt.Printf("  Default file: (newest full backup)\n")
	}
	if settings.BinDir != "" {
		fmt.Println()
		fmt.Printf("Client tools directory: %s\n", settings.BinDir)
	}

	return nil
}
