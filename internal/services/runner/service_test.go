package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fgeck/supadb/internal/display"
	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/dump"
	"github.com/fgeck/supadb/internal/services/prompt"
	"github.com/fgeck/supadb/internal/services/restore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations.
type mockDumpService struct {
	dumpFunc func(ctx context.Context, conn models.ConnectionConfig, mode dump.Mode, outputPath string) (*models.DumpResult, error)
	calls    []dump.Mode
	paths    []string
}

func (m *mockDumpService) Dump(ctx context.Context, conn models.ConnectionConfig, mode dump.Mode, outputPath string) (*models.DumpResult, error) {
	m.calls = append(m.calls, mode)
	m.paths = append(m.paths, outputPath)
	if m.dumpFunc != nil {
		return m.dumpFunc(ctx, conn, mode, outputPath)
	}
	return &models.DumpResult{OutputPath: outputPath, SizeBytes: 1024}, nil
}

type mockRestoreService struct {
	restoreFunc func(ctx context.Context, conn models.ConnectionConfig, file string, timeout time.Duration) (*models.RestoreResult, error)
	calls       int
}

func (m *mockRestoreService) Restore(ctx context.Context, conn models.ConnectionConfig, file string, timeout time.Duration) (*models.RestoreResult, error) {
	m.calls++
	if m.restoreFunc != nil {
		return m.restoreFunc(ctx, conn, file, timeout)
	}
	return &models.RestoreResult{Outcome: models.RestoreSucceeded, File: file}, nil
}

type mockCompressService struct {
	compressFunc func(inputPath string) (string, error)
	calls        int
}

func (m *mockCompressService) Compress(inputPath string) (string, error) {
	m.calls++
	if m.compressFunc != nil {
		return m.compressFunc(inputPath)
	}
	return inputPath + ".zst", nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func newTestRunner(
	dumpSvc *mockDumpService,
	restoreSvc *mockRestoreService,
	compressSvc *mockCompressService,
	input string,
	out *bytes.Buffer,
) *Impl {
	if out == nil {
		out = &bytes.Buffer{}
	}
	return NewWithServices(
		testLogger(),
		dumpSvc,
		restoreSvc,
		compressSvc,
		prompt.NewWithReader(strings.NewReader(input), io.Discard),
		display.NewReporterWithWriter(out),
		fixedNow,
	)
}

func testSettings(t *testing.T) models.Settings {
	t.Helper()
	return models.Settings{
		Connection: models.ConnectionConfig{
			Host:     "db.example.supabase.co",
			Port:     "6543",
			Username: "postgres",
			Password: "secret",
			Database: "postgres",
		},
		Backup:  models.BackupSettings{OutputDir: t.TempDir()},
		Restore: models.RestoreSettings{Timeout: time.Minute},
	}
}

func TestBackup_RunsBothModes(t *testing.T) {
	dumpSvc := &mockDumpService{}
	r := newTestRunner(dumpSvc, &mockRestoreService{}, &mockCompressService{}, "", nil)

	err := r.Backup(context.Background(), testSettings(t))

	require.NoError(t, err)
	assert.Equal(t, []dump.Mode{dump.ModeSchemaOnly, dump.ModeFull}, dumpSvc.calls)

	require.Len(t, dumpSvc.paths, 2)
	assert.Contains(t, dumpSvc.paths[0], "schema_only_20250314_092653.sql")
	assert.Contains(t, dumpSvc.paths[1], "full_backup_20250314_092653.sql")
	assert.NotEqual(t, dumpSvc.paths[0], dumpSvc.paths[1])
}

func TestBackup_FirstModeFailureDoesNotBlockSecond(t *testing.T) {
	dumpSvc := &mockDumpService{
		dumpFunc: func(ctx context.Context, conn models.ConnectionConfig, mode dump.Mode, outputPath string) (*models.DumpResult, error) {
			if mode == dump.ModeSchemaOnly {
				return &models.DumpResult{OutputPath: outputPath, Error: errors.New("pg_dump failed: exit status 1")}, nil
			}
			return &models.DumpResult{OutputPath: outputPath, SizeBytes: 512}, nil
		},
	}
	r := newTestRunner(dumpSvc, &mockRestoreService{}, &mockCompressService{}, "", nil)

	err := r.Backup(context.Background(), testSettings(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Len(t, dumpSvc.calls, 2)
}

func TestBackup_CompressesArtifactsWhenEnabled(t *testing.T) {
	settings := testSettings(t)
	settings.Backup.Compress = true

	dumpSvc := &mockDumpService{
		dumpFunc: func(ctx context.Context, conn models.ConnectionConfig, mode dump.Mode, outputPath string) (*models.DumpResult, error) {
			require.NoError(t, os.WriteFile(outputPath, []byte("-- dump\n"), 0o600))
			return &models.DumpResult{OutputPath: outputPath, SizeBytes: 8}, nil
		},
	}
	compressSvc := &mockCompressService{}
	r := newTestRunner(dumpSvc, &mockRestoreService{}, compressSvc, "", nil)

	err := r.Backup(context.Background(), settings)

	require.NoError(t, err)
	assert.Equal(t, 2, compressSvc.calls)
}

func TestBackup_CompressionFailureKeepsPlainArtifact(t *testing.T) {
	settings := testSettings(t)
	settings.Backup.Compress = true

	compressSvc := &mockCompressService{
		compressFunc: func(inputPath string) (string, error) {
			return "", errors.New("disk full")
		},
	}
	var out bytes.Buffer
	r := newTestRunner(&mockDumpService{}, &mockRestoreService{}, compressSvc, "", &out)

	err := r.Backup(context.Background(), settings)

	// Compression failure is not a backup failure.
	require.NoError(t, err)
	assert.Contains(t, out.String(), "SUCCESS")
}

func TestBackup_SkipsCompressionWhenDisabled(t *testing.T) {
	compressSvc := &mockCompressService{}
	r := newTestRunner(&mockDumpService{}, &mockRestoreService{}, compressSvc, "", nil)

	err := r.Backup(context.Background(), testSettings(t))

	require.NoError(t, err)
	assert.Zero(t, compressSvc.calls)
}

func writeBackup(t *testing.T, dir, name string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1;\n"), 0o600))
	return file
}

func TestRestore_ConfirmedRuns(t *testing.T) {
	settings := testSettings(t)
	file := writeBackup(t, settings.Backup.OutputDir, "full_backup_20250314_092653.sql")

	restoreSvc := &mockRestoreService{}
	r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, "yes\n", nil)

	err := r.Restore(context.Background(), settings, file, false)

	require.NoError(t, err)
	assert.Equal(t, 1, restoreSvc.calls)
}

func TestRestore_DeclinedConfirmationCancelsWithoutSubprocess(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong word", "no\n"},
		{"empty line", "\n"},
		{"partial", "y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			file := writeBackup(t, settings.Backup.OutputDir, "full_backup_20250314_092653.sql")

			restoreSvc := &mockRestoreService{}
			var out bytes.Buffer
			r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, tt.input, &out)

			err := r.Restore(context.Background(), settings, file, false)

			require.NoError(t, err)
			assert.Zero(t, restoreSvc.calls)
			assert.Contains(t, out.String(), "cancelled")
		})
	}
}

func TestRestore_SkipConfirmBypassesPrompt(t *testing.T) {
	settings := testSettings(t)
	file := writeBackup(t, settings.Backup.OutputDir, "full_backup_20250314_092653.sql")

	restoreSvc := &mockRestoreService{}
	// No input available; would fail if the prompt were consulted.
	r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, "", nil)

	err := r.Restore(context.Background(), settings, file, true)

	require.NoError(t, err)
	assert.Equal(t, 1, restoreSvc.calls)
}

func TestRestore_PromptsForFileWithDefault(t *testing.T) {
	settings := testSettings(t)
	settings.Restore.DefaultFile = writeBackup(t, settings.Backup.OutputDir, "full_backup_default.sql")

	var promptedFile string
	restoreSvc := &mockRestoreService{
		restoreFunc: func(ctx context.Context, conn models.ConnectionConfig, file string, timeout time.Duration) (*models.RestoreResult, error) {
			promptedFile = file
			return &models.RestoreResult{Outcome: models.RestoreSucceeded, File: file}, nil
		},
	}
	// Empty line accepts the default, then confirm.
	r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, "\nYES\n", nil)

	err := r.Restore(context.Background(), settings, "", false)

	require.NoError(t, err)
	assert.Equal(t, settings.Restore.DefaultFile, promptedFile)
}

func TestRestore_DefaultFileFallsBackToNewestFullBackup(t *testing.T) {
	settings := testSettings(t)

	older := filepath.Join(settings.Backup.OutputDir, "full_backup_20250101_000000.sql")
	newer := filepath.Join(settings.Backup.OutputDir, "full_backup_20250314_092653.sql")
	require.NoError(t, os.WriteFile(older, []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(newer, []byte("new"), 0o600))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	r := newTestRunner(&mockDumpService{}, &mockRestoreService{}, &mockCompressService{}, "", nil)

	assert.Equal(t, newer, r.defaultRestoreFile(settings))
}

func TestRestore_MissingFileNeverReachesConfirmation(t *testing.T) {
	settings := testSettings(t)
	missing := filepath.Join(settings.Backup.OutputDir, "definitely-missing.sql")

	restoreSvc := &mockRestoreService{}
	var out bytes.Buffer
	// Input that would decline the confirmation if it were reached.
	r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, "no\n", &out)

	err := r.Restore(context.Background(), settings, missing, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, restore.ErrFileNotFound)
	assert.Zero(t, restoreSvc.calls)
	assert.NotContains(t, out.String(), "OVERWRITE")
	assert.NotContains(t, out.String(), "cancelled")
}

func TestRestore_MissingPromptedFileSurfaced(t *testing.T) {
	settings := testSettings(t)

	restoreSvc := &mockRestoreService{}
	r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, "missing.sql\n", nil)

	err := r.Restore(context.Background(), settings, "", false)

	require.Error(t, err)
	assert.ErrorIs(t, err, restore.ErrFileNotFound)
	assert.Zero(t, restoreSvc.calls)
}

func TestRestore_FailedOutcomeReturnsError(t *testing.T) {
	settings := testSettings(t)
	file := writeBackup(t, settings.Backup.OutputDir, "full_backup_20250314_092653.sql")

	restoreSvc := &mockRestoreService{
		restoreFunc: func(ctx context.Context, conn models.ConnectionConfig, file string, timeout time.Duration) (*models.RestoreResult, error) {
			return &models.RestoreResult{
				Outcome: models.RestoreTimedOut,
				File:    file,
				Error:   context.DeadlineExceeded,
			}, nil
		},
	}
	r := newTestRunner(&mockDumpService{}, restoreSvc, &mockCompressService{}, "YES\n", nil)

	err := r.Restore(context.Background(), settings, file, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
