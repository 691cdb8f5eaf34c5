package mix

import "errors"

// ErrUnknownSession indicates a session number outside the fixed plan.
var ErrUnknownSession = errors.New("unknown session")

// ErrEmptyMusic indicates the music clip decoded to no audio and cannot be looped.
var ErrEmptyMusic = errors.New("music clip is empty")
