// Package models contains the data structures used throughout supadb.
package models

import "time"

// Settings holds the complete resolved configuration for a run.
type Settings struct {
	Connection ConnectionConfig
	Backup     BackupSettings
	Restore    RestoreSettings

	// BinDir, when set, is tried first when locating the Postgres
	// client binaries.
	BinDir string
}

// ConnectionConfig holds the database connection parameters. The password
// is only ever handed to a subprocess through an environment overlay.
type ConnectionConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// BackupSettings holds backup-specific settings.
type BackupSettings struct {
	OutputDir string
	Compress  bool
}

// RestoreSettings holds restore-specific settings.
type RestoreSettings struct {
	// DefaultFile is suggested when prompting for a restore target.
	// Empty means "pick the newest full backup in OutputDir".
	DefaultFile string
	Timeout     time.Duration
}
