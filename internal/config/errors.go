package config

import "errors"

// ErrInvalidGain indicates a music gain that is not a number or would amplify.
var ErrInvalidGain = errors.New("invalid music gain")

// ErrInvalidDir indicates a configured directory is unusable.
var ErrInvalidDir = errors.New("invalid directory")
