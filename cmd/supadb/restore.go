package main

import (
	"github.com/fgeck/supadb/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var assumeYes bool

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Apply a previously produced dump file via psql",
	Long: `Apply a SQL dump file to the configured database. Without a file
argument, a filename is prompted for with a default suggestion.

This operation OVERWRITES existing data; a typed confirmation is required
before anything runs. Execution is bounded by RESTORE_TIMEOUT (default
300s).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the typed confirmation (for automation)")
}

func runRestore(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return err
	}

	var file string
	if len(args) == 1 {
		file = args[0]
	}

	log.Info().
		Str("host", settings.Connection.Host).
		Dur("timeout", settings.Restore.Timeout).
		Msg("configuration loaded")

	ctx, cancel := signalContext()
	defer cancel()

	runnerSvc := runner.New(log.Logger, settings.BinDir)
	if err := runnerSvc.Restore(ctx, *settings, file, assumeYes); err != nil {
		log.Error().Err(err).Msg("restore failed")
		return err
	}
	return nil
}
