// Package runner orchestrates the backup and restore workflows.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fgeck/supadb/internal/display"
	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/compress"
	"github.com/fgeck/supadb/internal/services/dump"
	"github.com/fgeck/supadb/internal/services/prompt"
	"github.com/fgeck/supadb/internal/services/restore"
	"github.com/rs/zerolog"
)

// ConfirmPhrase must be typed (any case) before a restore proceeds.
const ConfirmPhrase = "YES"

// Service defines the interface for the workflow runner.
type Service interface {
	Backup(ctx context.Context, settings models.Settings) error
	Restore(ctx context.Context, settings models.Settings, file string, skipConfirm bool) error
}

// Impl implements the runner Service interface.
type Impl struct {
	dumpSvc     dump.Service
	restoreSvc  restore.Service
	compressSvc compress.Service
	prompter    prompt.Service
	reporter    *display.Reporter
	logger      zerolog.Logger
	now         func() time.Time
}

// New creates a new runner service.
func New(logger zerolog.Logger, binDir string) *Impl {
	return &Impl{
		dumpSvc:     dump.New(logger, binDir),
		restoreSvc:  restore.New(logger, binDir),
		compressSvc: compress.New(logger),
		prompter:    prompt.New(),
		reporter:    display.NewReporter(),
		logger:      logger,
		now:         time.Now,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	dumpSvc dump.Service,
	restoreSvc restore.Service,
	compressSvc compress.Service,
	prompter prompt.Service,
	reporter *display.Reporter,
	now func() time.Time,
) *Impl {
	return &Impl{
		dumpSvc:     dumpSvc,
		restoreSvc:  restoreSvc,
		compressSvc: compressSvc,
		prompter:    prompter,
		reporter:    reporter,
		logger:      logger,
		now:         now,
	}
}

// Backup runs the schema-only and full dumps sequentially. The modes are
// independent: a failure in one never blocks the other. Both artifacts of
// one run share a timestamp; consecutive runs never overwrite each other.
func (s *Impl) Backup(ctx context.Context, settings models.Settings) error {
	ts := s.now()
	failed := 0

	for _, mode := range []dump.Mode{dump.ModeSchemaOnly, dump.ModeFull} {
		outputPath := filepath.Join(settings.Backup.OutputDir, dump.OutputFilename(mode, ts))
		s.reporter.DumpStarted(mode, outputPath)

		result, err := s.dumpSvc.Dump(ctx, settings.Connection, mode, outputPath)
		if err != nil {
			result = &models.DumpResult{OutputPath: outputPath, Error: err}
		}

		if result.Error == nil && settings.Backup.Compress {
			s.compressArtifact(result)
		}

		s.reporter.DumpResult(mode, result)
		if result.Error != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of 2 backup modes failed", failed)
	}
	return nil
}

func (s *Impl) compressArtifact(result *models.DumpResult) {
	compressed, err := s.compressSvc.Compress(result.OutputPath)
	if err != nil {
		// The uncompressed artifact is still valid; keep it.
		s.logger.Warn().Err(err).Str("path", result.OutputPath).Msg("compression failed, keeping plain artifact")
		return
	}
	result.OutputPath = compressed
	if info, err := os.Stat(compressed); err == nil {
		result.SizeBytes = info.Size()
	}
}

// Restore resolves the target file, asks for confirmation, and applies the
// dump via psql. The file must exist before the operator is asked to
// confirm anything. A declined confirmation is reported as cancelled, not
// as an error; no subprocess is started in that case.
func (s *Impl) Restore(ctx context.Context, settings models.Settings, file string, skipConfirm bool) error {
	if file == "" {
		answer, err := s.prompter.Line("Enter the backup file to restore", s.defaultRestoreFile(settings))
		if err != nil {
			return fmt.Errorf("file prompt: %w", err)
		}
		file = answer
	}
	if file == "" {
		return fmt.Errorf("no restore file given")
	}
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("%w: %s", restore.ErrFileNotFound, file)
	}

	if !skipConfirm {
		s.reporter.RestoreWarning()
		ok, err := s.prompter.Confirm("Type '"+ConfirmPhrase+"' to proceed with the database RESTORE", ConfirmPhrase)
		if err != nil || !ok {
			s.reporter.RestoreResult(&models.RestoreResult{Outcome: models.RestoreCancelled, File: file})
			s.logger.Info().Str("file", file).Msg("restore cancelled")
			return nil
		}
	}

	s.reporter.RestoreStarted(file, settings.Connection.Host)

	result, err := s.restoreSvc.Restore(ctx, settings.Connection, file, settings.Restore.Timeout)
	if err != nil {
		return err
	}

	s.reporter.RestoreResult(result)
	if result.Error != nil {
		return fmt.Errorf("restore %s", result.Outcome)
	}
	return nil
}

// defaultRestoreFile suggests a restore target: the configured default,
// else the most recently modified full backup in the output directory.
func (s *Impl) defaultRestoreFile(settings models.Settings) string {
	if settings.Restore.DefaultFile != "" {
		return settings.Restore.DefaultFile
	}

	matches, err := filepath.Glob(filepath.Join(settings.Backup.OutputDir, "full_backup_*.sql*"))
	if err != nil || len(matches) == 0 {
		return ""
	}

	var newest string
	var newestTime time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.ModTime().After(newestTime) {
			newest = m
			newestTime = info.ModTime()
		}
	}
	return newest
}
