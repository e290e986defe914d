package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgeck/supadb/internal/config"
	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/prompt"
	"github.com/fgeck/supadb/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	outputDir string
	compress  bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create schema-only and full backups via pg_dump",
	Long: `Create two timestamped backup files:
1. schema_only_<timestamp>.sql - structure only, no row data
2. full_backup_<timestamp>.sql - structure and data, excluding the
   platform-managed schemas (auth, storage, realtime, supabase_functions,
   supabase_migrations)

The two dumps run sequentially and independently; a failure in one does
not block the other.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for backup files (default from BACKUP_DIR or .)")
	backupCmd.Flags().BoolVar(&compress, "compress", false, "compress artifacts with zstd after a successful dump")
}

func runBackup(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return err
	}
	if outputDir != "" {
		settings.Backup.OutputDir = outputDir
	}
	if compress {
		settings.Backup.Compress = true
	}

	log.Info().
		Str("host", settings.Connection.Host).
		Str("port", settings.Connection.Port).
		Str("output_dir", settings.Backup.OutputDir).
		Msg("configuration loaded")

	ctx, cancel := signalContext()
	defer cancel()

	runnerSvc := runner.New(log.Logger, settings.BinDir)
	if err := runnerSvc.Backup(ctx, *settings); err != nil {
		log.Error().Err(err).Msg("backup failed")
		return err
	}
	return nil
}

// loadSettings resolves the configuration, prompting for a missing password.
func loadSettings() (*models.Settings, error) {
	loader := config.NewLoader(prompt.New())
	if err := loadEnvFile(loader); err != nil {
		return nil, err
	}
	return loader.Load()
}

func loadEnvFile(loader *config.Loader) error {
	if envFile != "" {
		return loader.LoadEnvFile(envFile, true)
	}
	return loader.LoadEnvFile(".env", false)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	return ctx, cancel
}
