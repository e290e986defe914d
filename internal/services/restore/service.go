// Package restore provides psql restore operations.
package restore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/pgbin"
	"github.com/rs/zerolog"
)

// BinaryName is the external restore utility.
const BinaryName = "psql"

// ErrFileNotFound indicates the restore target does not exist on disk.
var ErrFileNotFound = errors.New("backup file not found")

// Service defines the interface for psql restore operations.
type Service interface {
	Restore(ctx context.Context, conn models.ConnectionConfig, file string, timeout time.Duration) (*models.RestoreResult, error)
}

// CommandExecutor allows mocking exec.Command in tests. Stdout and stderr
// are captured separately; psql reports errors on both streams.
type CommandExecutor interface {
	ExecuteWithEnv(ctx context.Context, env []string, name string, args ...string) (stdout, stderr []byte, err error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// ExecuteWithEnv runs a command with an environment overlay appended to a
// copy of the process environment.
func (e *DefaultExecutor) ExecuteWithEnv(ctx context.Context, env []string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Impl implements the restore Service interface.
type Impl struct {
	executor CommandExecutor
	logger   zerolog.Logger
	binary   string
}

// New creates a new restore service, locating psql via binDir, the fixed
// install path, then PATH.
func New(logger zerolog.Logger, binDir string) *Impl {
	return &Impl{
		executor: &DefaultExecutor{},
		logger:   logger,
		binary:   pgbin.Resolve(BinaryName, binDir),
	}
}

// NewWithExecutor creates a new restore service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor, binary string) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
		binary:   binary,
	}
}

// Restore streams file into the database via psql, bounded by timeout.
// The outcome is carried in the result; a non-nil error is returned only
// when the target file is missing so no subprocess is started.
func (s *Impl) Restore(ctx context.Context, conn models.ConnectionConfig, file string, timeout time.Duration) (*models.RestoreResult, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, file)
	}

	s.logger.Info().
		Str("host", conn.Host).
		Str("port", conn.Port).
		Str("database", conn.Database).
		Str("file", file).
		Dur("timeout", timeout).
		Msg("starting restore")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := BuildArgs(conn, file)
	env := []string{"PGPASSWORD=" + conn.Password}

	start := time.Now()
	stdout, stderr, execErr := s.executor.ExecuteWithEnv(ctx, env, s.binary, args...)

	result := &models.RestoreResult{
		File:     file,
		Duration: time.Since(start),
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
	}

	if execErr != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			result.Outcome = models.RestoreTimedOut
			result.Error = fmt.Errorf("restore timed out after %s: %w", timeout, context.DeadlineExceeded)
		case errors.Is(execErr, exec.ErrNotFound):
			result.Outcome = models.RestoreFailed
			result.Error = &pgbin.NotFoundError{Name: BinaryName, Path: s.binary}
		default:
			result.Outcome = models.RestoreFailed
			result.Error = fmt.Errorf("psql failed: %w", execErr)
			result.PasswordHint = looksLikeCredentialFailure(result.Stdout + "\n" + result.Stderr)
		}
		return result, nil
	}

	result.Outcome = models.RestoreSucceeded

	s.logger.Info().
		Str("file", file).
		Dur("duration", result.Duration).
		Msg("restore completed")

	return result, nil
}

// BuildArgs constructs the psql argument list: execute the script file,
// echo failing statements, suppress routine output.
func BuildArgs(conn models.ConnectionConfig, file string) []string {
	return []string{
		"--host=" + conn.Host,
		"--port=" + conn.Port,
		"--username=" + conn.Username,
		"--dbname=" + conn.Database,
		"--file=" + file,
		"--echo-errors",
		"--quiet",
	}
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
