package models

import "time"

// DumpResult holds the result of a pg_dump operation.
type DumpResult struct {
	OutputPath string
	SizeBytes  int64
	Duration   time.Duration
	Output     string // combined stdout/stderr from pg_dump
	Error      error
	// PasswordHint is set when the failure output points at bad credentials.
	PasswordHint bool
}
