package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrSessionsFailed indicates at least one session could not be mixed.
	ErrSessionsFailed = errors.New("one or more sessions failed")

	// ErrInvalidConfig indicates the config file could not be read or parsed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownConfigKey indicates a config key outside the supported set.
	ErrUnknownConfigKey = errors.New("unknown config key")

	// ErrInputsMissing indicates the dry run found missing source clips.
	ErrInputsMissing = errors.New("input files missing")
)
