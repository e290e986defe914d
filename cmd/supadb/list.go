package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fgeck/supadb/internal/config"
	"github.com/fgeck/supadb/internal/services/prompt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup artifacts in the backup directory",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory to list (default from BACKUP_DIR or .)")
}

// backupEntry is one artifact found in the backup directory.
type backupEntry struct {
	path    string
	size    int64
	modTime time.Time
}

func runList(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(prompt.New())
	if err := loadEnvFile(loader); err != nil {
		return err
	}
	settings, err := loader.LoadStatic()
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return err
	}

	dir := settings.Backup.OutputDir
	if outputDir != "" {
		dir = outputDir
	}

	entries, err := collectBackups(dir)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("No backups found in %s\n", dir)
		return nil
	}

	fmt.Printf("Backups in %s:\n", dir)
	for _, e := range entries {
		fmt.Printf("  %-45s %10s  %s\n",
			filepath.Base(e.path),
			humanize.Bytes(uint64(e.size)),
			humanize.Time(e.modTime))
	}
	return nil
}

// collectBackups returns the backup artifacts in dir, newest first.
func collectBackups(dir string) ([]backupEntry, error) {
	var entries []backupEntry
	for _, pattern := range []string{"schema_only_*.sql*", "full_backup_*.sql*"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", dir, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			entries = append(entries, backupEntry{
				path:    m,
				size:    info.Size(),
				modTime: info.ModTime(),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.After(entries[j].modTime)
	})
	return entries, nil
}
