package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	// binaryName is the base name of the ffmpeg binary.
	binaryName = "ffmpeg"

	// binaryExtWindows is the file extension for Windows executables.
	binaryExtWindows = ".exe"

	// minFFmpegMajorVersion is the minimum supported ffmpeg version.
	minFFmpegMajorVersion = 4

	// mp3EncoderName is the encoder every export relies on.
	mp3EncoderName = "libmp3lame"
)

// Environment variable for custom ffmpeg path.
const envFFmpegPath = "FFMPEG_PATH"

// ---------------------------------------------------------------------------
// Resolver - testable FFmpeg resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver locates the FFmpeg binary.
type Resolver struct {
	statter fileStatter
	env     envProvider
	goos    string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(res *Resolver) { res.statter = s }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithPlatform sets the target OS (for testing cross-platform behavior).
func WithPlatform(goos string) ResolverOption {
	return func(res *Resolver) { res.goos = goos }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		statter: osFileStatter{},
		env:     osEnvProvider{},
		goos:    runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. ~/.sessionmix/bin/ffmpeg
//  3. System PATH
//
// The context is accepted for parity with other setup steps; resolution
// itself only touches the local filesystem.
func (r *Resolver) Resolve(_ context.Context) (string, error) {
	// 1. Check FFMPEG_PATH environment variable
	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.statter.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	// 2. Check our install directory
	if path, err := r.installedPath(); err == nil {
		if _, err := r.statter.Stat(path); err == nil {
			return path, nil
		}
	}

	// 3. Check system PATH
	if path, err := r.env.LookPath(binaryName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w\n\n%s", ErrNotFound, r.manualInstallInstructions())
}

// installedPath returns where a user-provided ffmpeg may be placed.
func (r *Resolver) installedPath() (string, error) {
	home, err := r.env.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	name := binaryName
	if r.goos == "windows" {
		name += binaryExtWindows
	}
	return filepath.Join(home, ".sessionmix", "bin", name), nil
}

// manualInstallInstructions returns platform-specific instructions.
// The MP3 encoder is called out because minimal builds ship without it.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg (with libmp3lame):
  brew install ffmpeg

Or set FFMPEG_PATH environment variable to your ffmpeg binary.`
	case "linux":
		return `To install FFmpeg (with libmp3lame):
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH environment variable to your ffmpeg binary.`
	case "windows":
		return `To install FFmpeg (with libmp3lame):
  winget install ffmpeg

Or set FFMPEG_PATH environment variable to your ffmpeg.exe.`
	default:
		return `To install FFmpeg, download a build with libmp3lame from https://ffmpeg.org/download.html
Or set FFMPEG_PATH environment variable to your ffmpeg binary.`
	}
}

// ---------------------------------------------------------------------------
// Package-level functions
// ---------------------------------------------------------------------------

var (
	defaultResolver     *Resolver
	defaultResolverOnce sync.Once
)

// getDefaultResolver returns the lazily-initialized default resolver.
func getDefaultResolver() *Resolver {
	defaultResolverOnce.Do(func() {
		defaultResolver = NewResolver()
	})
	return defaultResolver
}

// Resolve finds ffmpeg using the default resolver.
func Resolve(ctx context.Context) (string, error) {
	return getDefaultResolver().Resolve(ctx)
}

// ---------------------------------------------------------------------------
// VersionChecker / EncoderChecker - capability checks on a resolved binary
// ---------------------------------------------------------------------------

// VersionChecker verifies FFmpeg version requirements.
type VersionChecker struct {
	executor *Executor
	stderr   io.Writer
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running FFmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionStderr sets the writer for warning messages.
func WithVersionStderr(w io.Writer) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.stderr = w }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: getDefaultExecutor(),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check verifies that ffmpeg meets minimum version requirements.
// Prints a warning if version is below minimum but doesn't fail.
// Returns true if version was successfully checked, false if parsing failed.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) bool {
	output, err := vc.executor.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return false
	}

	// Parse version from output like "ffmpeg version 6.1.1 Copyright..."
	first, _, _ := strings.Cut(output, "\n")
	if first == "" {
		return false
	}

	var major int
	if _, err := fmt.Sscanf(first, "ffmpeg version %d", &major); err != nil {
		// Try alternative format "ffmpeg version n6.1.1..."
		if _, err := fmt.Sscanf(first, "ffmpeg version n%d", &major); err != nil {
			return false
		}
	}

	if major < minFFmpegMajorVersion {
		fmt.Fprintf(vc.stderr, "Warning: ffmpeg version %d detected, version %d+ recommended\n",
			major, minFFmpegMajorVersion)
	}
	return true
}

// CheckVersion verifies ffmpeg version requirements with the default executor.
func CheckVersion(ctx context.Context, ffmpegPath string) {
	NewVersionChecker().Check(ctx, ffmpegPath)
}

// EncoderChecker verifies that the FFmpeg build can write MP3.
type EncoderChecker struct {
	executor *Executor
}

// NewEncoderChecker creates an EncoderChecker. A nil executor uses the default.
func NewEncoderChecker(e *Executor) *EncoderChecker {
	if e == nil {
		e = getDefaultExecutor()
	}
	return &EncoderChecker{executor: e}
}

// Check lists FFmpeg's encoders and returns ErrEncoderMissing when libmp3lame
// is absent.
func (ec *EncoderChecker) Check(ctx context.Context, ffmpegPath string) error {
	output, err := ec.executor.RunOutput(ctx, ffmpegPath, []string{"-hide_banner", "-encoders"})
	if err != nil && output == "" {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return fmt.Errorf("list encoders: %w", err)
	}
	if !hasEncoder(output, mp3EncoderName) {
		return fmt.Errorf("%w: %s", ErrEncoderMissing, ffmpegPath)
	}
	return nil
}

// CheckEncoder verifies MP3 support with the default executor.
func CheckEncoder(ctx context.Context, ffmpegPath string) error {
	return NewEncoderChecker(nil).Check(ctx, ffmpegPath)
}

// hasEncoder reports whether name appears as an encoder in `ffmpeg -encoders`
// output. Lines look like " A....D libmp3lame  libmp3lame MP3 (MPEG audio layer 3)".
func hasEncoder(output, name string) bool {
	for line := range strings.SplitSeq(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}
