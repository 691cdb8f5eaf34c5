package audio

import "errors"

// ErrFileNotFound indicates an input clip does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrDecodeFailed indicates FFmpeg could not decode an input clip.
var ErrDecodeFailed = errors.New("audio decoding failed")

// ErrEncodeFailed indicates FFmpeg could not encode the mixed output.
var ErrEncodeFailed = errors.New("audio encoding failed")

// ErrProbeFailed indicates the duration of a clip could not be determined.
var ErrProbeFailed = errors.New("audio probe failed")

// ErrInvalidFormat indicates a PCM format or sample buffer is malformed.
var ErrInvalidFormat = errors.New("invalid audio format")

// ErrFormatMismatch indicates two segments with different formats were combined.
var ErrFormatMismatch = errors.New("audio format mismatch")

// ErrEmptySegment indicates an operation needs a segment with at least one frame.
var ErrEmptySegment = errors.New("empty audio segment")
