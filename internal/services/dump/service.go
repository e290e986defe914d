// Package dump provides pg_dump backup operations.
package dump

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/pgbin"
	"github.com/rs/zerolog"
)

// BinaryName is the external dump utility.
const BinaryName = "pg_dump"

// Mode selects what a dump contains.
type Mode string

const (
	// ModeSchemaOnly dumps structure only, no row data.
	ModeSchemaOnly Mode = "schema-only"
	// ModeFull dumps structure and data, excluding platform-managed schemas.
	ModeFull Mode = "full"
)

// ExcludedSchemas are the platform-managed schemas that a full backup
// must omit; they are owned by the hosting platform, not user data.
var ExcludedSchemas = []string{
	"auth",
	"storage",
	"realtime",
	"supabase_functions",
	"supabase_migrations",
}

// Service defines the interface for pg_dump operations.
type Service interface {
	Dump(ctx context.Context, conn models.ConnectionConfig, mode Mode, outputPath string) (*models.DumpResult, error)
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	ExecuteWithEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// ExecuteWithEnv runs a command with an environment overlay appended to a
// copy of the process environment, and returns its combined output.
func (e *DefaultExecutor) ExecuteWithEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

// Impl implements the dump Service interface.
type Impl struct {
	executor CommandExecutor
	logger   zerolog.Logger
	binary   string
}

// New creates a new dump service, locating pg_dump via binDir, the fixed
// install path, then PATH.
func New(logger zerolog.Logger, binDir string) *Impl {
	return &Impl{
		executor: &DefaultExecutor{},
		logger:   logger,
		binary:   pgbin.Resolve(BinaryName, binDir),
	}
}

// NewWithExecutor creates a new dump service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor, binary string) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
		binary:   binary,
	}
}

// Dump runs pg_dump in the given mode. Execution failures are reported
// through the result so callers can run the other mode regardless.
func (s *Impl) Dump(ctx context.Context, conn models.ConnectionConfig, mode Mode, outputPath string) (*models.DumpResult, error) {
	s.logger.Info().
		Str("host", conn.Host).
		Str("port", conn.Port).
		Str("database", conn.Database).
		Str("mode", string(mode)).
		Str("output", outputPath).
		Msg("starting dump")

	start := time.Now()
	result := &models.DumpResult{OutputPath: outputPath}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			result.Error = fmt.Errorf("failed to create output directory: %w", err)
			result.Duration = time.Since(start)
			return result, nil
		}
	}

	args := BuildArgs(conn, mode, outputPath)
	env := []string{"PGPASSWORD=" + conn.Password}

	output, execErr := s.executor.ExecuteWithEnv(ctx, env, s.binary, args...)
	result.Output = string(output)
	result.Duration = time.Since(start)

	if execErr != nil {
		// Clean up partial file
		_ = os.Remove(outputPath)
		if errors.Is(execErr, exec.ErrNotFound) {
			result.Error = &pgbin.NotFoundError{Name: BinaryName, Path: s.binary}
			return result, nil
		}
		result.Error = fmt.Errorf("pg_dump failed: %w", execErr)
		result.PasswordHint = looksLikeCredentialFailure(result.Output)
		return result, nil
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		result.Error = fmt.Errorf("pg_dump reported success but %s is missing: %w", outputPath, err)
		return result, nil
	}
	result.SizeBytes = info.Size()

	s.logger.Info().
		Str("output", outputPath).
		Int64("size_bytes", result.SizeBytes).
		Dur("duration", result.Duration).
		Msg("dump completed")

	return result, nil
}

// BuildArgs constructs the pg_dump argument list for a mode. The flags
// produce dumps that restore cleanly on another project: objects are
// dropped if present and ownership/privileges are stripped.
func BuildArgs(conn models.ConnectionConfig, mode Mode, outputPath string) []string {
	args := []string{
		"--host=" + conn.Host,
		"--port=" + conn.Port,
		"--username=" + conn.Username,
		"--dbname=" + conn.Database,
		"--clean",
		"--if-exists",
		"--no-owner",
		"--no-privileges",
		"--file=" + outputPath,
	}

	switch mode {
	case ModeSchemaOnly:
		args = append(args, "--schema-only")
	case ModeFull:
		for _, schema := range ExcludedSchemas {
			args = append(args, "--exclude-schema="+schema)
		}
	}

	return args
}

// OutputFilename returns the timestamped artifact name for a mode.
func OutputFilename(mode Mode, ts time.Time) string {
	stamp := ts.Format("20060102_150405")
	if mode == ModeSchemaOnly {
		return fmt.Sprintf("schema_only_%s.sql", stamp)
	}
	return fmt.Sprintf("full_backup_%s.sql", stamp)
}

// Failure text from the hosted database that indicates bad credentials.
var credentialFailurePatterns = []string{
	"wrong password",
	"password authentication failed",
}

func looksLikeCredentialFailure(output string) bool {
	out := strings.ToLower(output)
	for _, pattern := range credentialFailurePatterns {
		if strings.Contains(out, pattern) {
			return true
		}
	}
	return false
}
