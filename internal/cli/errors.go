package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrCancelled indicates the user declined the deletion confirmation.
	// The whole run aborts before any processing.
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidDuration indicates a negative minimum duration.
	ErrInvalidDuration = errors.New("minimum duration must not be negative")

	// ErrOutputDirRequired indicates no output directory was given via flag
	// or configuration.
	ErrOutputDirRequired = errors.New("output directory required (use --output-dir or `tgsplit config set output-dir`)")
)
