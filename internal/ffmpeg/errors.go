package ffmpeg

import "errors"

// ErrNotFound indicates no usable FFmpeg binary could be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrEncoderMissing indicates the FFmpeg build lacks the MP3 encoder.
var ErrEncoderMissing = errors.New("ffmpeg has no libmp3lame encoder")
