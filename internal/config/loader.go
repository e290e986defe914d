// Package config resolves supadb settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/prompt"
	"github.com/spf13/viper"
)

// Default values applied when the environment leaves them unset.
const (
	DefaultPort           = "6543"
	DefaultDatabase       = "postgres"
	DefaultRestoreTimeout = 300 * time.Second
)

// supabaseDomain is the hosted-project domain a direct database host can
// be derived from.
const supabaseDomain = ".supabase.co"

// Loader resolves settings from environment variables, optionally merged
// with a dotenv file. Environment variables take precedence.
type Loader struct {
	v        *viper.Viper
	prompter prompt.Service
}

// NewLoader creates a configuration loader. The prompter is consulted
// for the password when the environment does not carry one.
func NewLoader(prompter prompt.Service) *Loader {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("db_port", DefaultPort)
	v.SetDefault("db_name", DefaultDatabase)
	v.SetDefault("backup_dir", ".")
	v.SetDefault("restore_timeout", DefaultRestoreTimeout)
	return &Loader{v: v, prompter: prompter}
}

// LoadEnvFile merges a dotenv file underneath the environment. A missing
// default ".env" is not an error; an explicitly named file must exist.
func (l *Loader) LoadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	l.v.SetConfigFile(path)
	l.v.SetConfigType("env")
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates the settings, prompting interactively for a
// missing password.
func (l *Loader) Load() (*models.Settings, error) {
	settings, err := l.resolve()
	if err != nil {
		return nil, err
	}
	if settings.Connection.Password == "" {
		pw, err := l.prompter.Password("Enter your database password")
		if err != nil {
			return nil, fmt.Errorf("password prompt: %w", err)
		}
		if pw == "" {
			return nil, fmt.Errorf("password cannot be empty")
		}
		settings.Connection.Password = pw
	}
	return settings, nil
}

// LoadStatic resolves and validates the settings without prompting. The
// password may be empty; callers that execute anything must use Load.
func (l *Loader) LoadStatic() (*models.Settings, error) {
	return l.resolve()
}

func (l *Loader) resolve() (*models.Settings, error) {
	host := l.v.GetString("db_host")
	if host == "" {
		if projectURL := l.v.GetString("supabase_url"); projectURL != "" {
			derived, err := HostFromProjectURL(projectURL)
			if err != nil {
				return nil, err
			}
			host = derived
		}
	}

	user := l.v.GetString("db_user")
	if host == "" || user == "" {
		return nil, fmt.Errorf("missing DB_HOST or DB_USER in environment")
	}

	settings := &models.Settings{
		Connection: models.ConnectionConfig{
			Host:     host,
			Port:     l.v.GetString("db_port"),
			Username: user,
			Password: l.v.GetString("pass"),
			Database: l.v.GetString("db_name"),
		},
		Backup: models.BackupSettings{
			OutputDir: l.v.GetString("backup_dir"),
			Compress:  l.v.GetBool("backup_compress"),
		},
		Restore: models.RestoreSettings{
			DefaultFile: l.v.GetString("restore_default_file"),
			Timeout:     l.v.GetDuration("restore_timeout"),
		},
		BinDir: l.v.GetString("pg_bin_dir"),
	}
	if settings.Restore.Timeout <= 0 {
		settings.Restore.Timeout = DefaultRestoreTimeout
	}
	return settings, nil
}

// HostFromProjectURL derives the direct database host from a hosted
// project URL, e.g. https://abcdefgh.supabase.co -> db.abcdefgh.supabase.co.
func HostFromProjectURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	if i := strings.IndexByte(u, '/'); i >= 0 {
		u = u[:i]
	}
	ref, ok := strings.CutSuffix(u, supabaseDomain)
	if !ok || ref == "" || strings.Contains(ref, ".") {
		return "", fmt.Errorf("cannot derive database host from SUPABASE_URL %q", raw)
	}
	return "db." + ref + supabaseDomain, nil
}
