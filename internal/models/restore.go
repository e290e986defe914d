package models

import "time"

// RestoreOutcome classifies how a restore attempt ended.
type RestoreOutcome int

const (
	RestoreSucceeded RestoreOutcome = iota
	RestoreFailed
	RestoreTimedOut
	RestoreCancelled
)

// String returns a human-readable outcome name.
func (o RestoreOutcome) String() string {
	switch o {
	case RestoreSucceeded:
		return "succeeded"
	case RestoreFailed:
		return "failed"
	case RestoreTimedOut:
		return "timed out"
	case RestoreCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RestoreResult holds the result of a psql restore operation.
type RestoreResult struct {
	Outcome  RestoreOutcome
	File     string
	Duration time.Duration
	Stdout   string
	Stderr   string
	Error    error
	// PasswordHint is set when the failure output points at bad credentials.
	PasswordHint bool
}
