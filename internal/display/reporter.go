// Package display prints operator-facing result lines.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/fgeck/supadb/internal/models"
	"github.com/fgeck/supadb/internal/services/dump"
)

// PasswordHintText is shown when a failure looks like bad credentials.
const PasswordHintText = "Hint: the password looks incorrect. Reset it and update PASS in your environment."

// Reporter formats results for the operator. Diagnostics are printed,
// never returned; colors degrade to plain text on non-terminal output.
type Reporter struct {
	out io.Writer

	success *color.Color
	failure *color.Color
	warning *color.Color
}

// NewReporter creates a reporter writing to stdout.
func NewReporter() *Reporter {
	return NewReporterWithWriter(os.Stdout)
}

// NewReporterWithWriter creates a reporter with a custom writer (for testing).
func NewReporterWithWriter(out io.Writer) *Reporter {
	return &Reporter{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow),
	}
}

// DumpStarted announces a dump mode before it runs.
func (r *Reporter) DumpStarted(mode dump.Mode, outputPath string) {
	switch mode {
	case dump.ModeSchemaOnly:
		fmt.Fprintf(r.out, "\nCreating SCHEMA-ONLY backup: %s\n", outputPath)
	default:
		fmt.Fprintf(r.out, "\nCreating FULL backup (schema + data, platform schemas excluded): %s\n", outputPath)
	}
}

// DumpResult prints the outcome of one dump mode.
func (r *Reporter) DumpResult(mode dump.Mode, result *models.DumpResult) {
	if result.Error == nil {
		r.success.Fprintf(r.out, "SUCCESS! Backup saved: %s (%s)\n",
			result.OutputPath, humanize.Bytes(uint64(result.SizeBytes)))
		return
	}

	r.failure.Fprintf(r.out, "%s backup failed: %v\n", mode, result.Error)
	if result.Output != "" {
		fmt.Fprintln(r.out, result.Output)
	}
	if result.PasswordHint {
		r.warning.Fprintln(r.out, PasswordHintText)
	}
}

// RestoreWarning prints the destructive-operation banner.
func (r *Reporter) RestoreWarning() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "=======================================================")
	r.warning.Fprintln(r.out, "WARNING: this operation will OVERWRITE existing data!")
	fmt.Fprintln(r.out, "=======================================================")
}

// RestoreStarted announces the restore target and host.
func (r *Reporter) RestoreStarted(file, host string) {
	fmt.Fprintf(r.out, "\nRestoring %s...\n", file)
	fmt.Fprintf(r.out, "Connecting to host: %s\n", host)
}

// RestoreResult prints the outcome of a restore attempt.
func (r *Reporter) RestoreResult(result *models.RestoreResult) {
	switch result.Outcome {
	case models.RestoreSucceeded:
		r.success.Fprintf(r.out, "\nRESTORE COMPLETE! Database restored from %s.\n", result.File)
	case models.RestoreCancelled:
		fmt.Fprintln(r.out, "Restore cancelled by user.")
	case models.RestoreTimedOut:
		r.failure.Fprintf(r.out, "\nRestore timed out: %v\n", result.Error)
		fmt.Fprintln(r.out, "The file may be too large or the connection too slow.")
	default:
		r.failure.Fprintf(r.out, "\nRestore failed: %v\n", result.Error)
		if result.Stdout != "" || result.Stderr != "" {
			fmt.Fprintln(r.out, "--- output from psql ---")
			if result.Stdout != "" {
				fmt.Fprintln(r.out, result.Stdout)
			}
			if result.Stderr != "" {
				fmt.Fprintln(r.out, result.Stderr)
			}
			fmt.Fprintln(r.out, "------------------------")
		}
		if result.PasswordHint {
			r.warning.Fprintln(r.out, PasswordHintText)
		}
	}
}
