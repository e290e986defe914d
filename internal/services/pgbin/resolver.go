// Package pgbin locates the Postgres client binaries.
package pgbin

import (
	"fmt"
	"os"
	"path/filepath"
)

// homebrewBinDir is where the Homebrew postgresql@15 keg installs the
// client tools on macOS; it is tried before falling back to PATH lookup.
const homebrewBinDir = "/opt/homebrew/opt/postgresql@15/bin"

// InstallHint is appended to missing-executable diagnostics.
const InstallHint = "ensure the PostgreSQL client tools are installed (e.g. brew install postgresql)"

// Resolve returns the first existing candidate path for name, falling
// back to the bare name so the subprocess layer resolves it via PATH.
// binDir, when non-empty, is tried first.
func Resolve(name, binDir string) string {
	candidates := []string{}
	if binDir != "" {
		candidates = append(candidates, filepath.Join(binDir, name))
	}
	candidates = append(candidates, filepath.Join(homebrewBinDir, name))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return name
}

// NotFoundError describes a client binary that could not be located.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s at %q: %s", e.Name, e.Path, InstallHint)
}
