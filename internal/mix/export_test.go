package mix

// Export internal types for testing.
// This file is only compiled during tests (suffix _test.go).

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter
