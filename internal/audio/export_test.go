package audio

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ParseDurationFromFFmpegOutput exports parseDurationFromFFmpegOutput for testing.
var ParseDurationFromFFmpegOutput = parseDurationFromFFmpegOutput

// ParseTimeComponents exports parseTimeComponents for testing.
var ParseTimeComponents = parseTimeComponents

// SegmentFromBytes exports segmentFromBytes for testing.
var SegmentFromBytes = segmentFromBytes

// DecodeArgs exports decodeArgs for testing.
var DecodeArgs = decodeArgs

// EncodeArgs exports encodeArgs for testing.
var EncodeArgs = encodeArgs

// --- Codec dependency injection exports ---

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter

// FileWriter exports fileWriter interface for testing.
type FileWriter = fileWriter
