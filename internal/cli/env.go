package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-sessionmix/internal/audio"
	"github.com/alnah/go-sessionmix/internal/config"
	"github.com/alnah/go-sessionmix/internal/ffmpeg"
	"github.com/alnah/go-sessionmix/internal/mix"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// NewRunID returns the identifier attached to every log line of a run.
	NewRunID func() string

	// NewLogger builds the run logger; verbose enables debug events.
	NewLogger func(verbose bool) *zap.Logger

	// FileStatter checks source clips and the bell without decoding them.
	FileStatter FileStatter

	// Factories for domain objects
	FFmpegResolver FFmpegResolver
	ConfigLoader   ConfigLoader
	CodecFactory   CodecFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary and checks its build.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
	CheckEncoder(ctx context.Context, ffmpegPath string) error
}

// FileStatter retrieves file information.
type FileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// ConfigLoader loads configuration. Environment fallbacks are read
// through getenv so they follow Env.Getenv.
type ConfigLoader interface {
	Load(getenv func(string) string) (config.Config, error)
}

// Codec decodes, probes and encodes audio files.
type Codec interface {
	mix.Codec
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// CodecFactory creates codecs bound to an FFmpeg binary.
type CodecFactory interface {
	NewCodec(ffmpegPath string) (Codec, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithRunID sets the run identifier generator.
func WithRunID(fn func() string) EnvOption {
	return func(e *Env) {
		e.NewRunID = fn
	}
}

// WithLogger sets the logger constructor.
func WithLogger(fn func(verbose bool) *zap.Logger) EnvOption {
	return func(e *Env) {
		e.NewLogger = fn
	}
}

// WithFileStatter sets the file statter.
func WithFileStatter(fs FileStatter) EnvOption {
	return func(e *Env) {
		e.FileStatter = fs
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithCodecFactory sets the codec factory.
func WithCodecFactory(f CodecFactory) EnvOption {
	return func(e *Env) {
		e.CodecFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Getenv:         os.Getenv,
		Now:            time.Now,
		NewRunID:       uuid.NewString,
		NewLogger:      func(verbose bool) *zap.Logger { return newLogger(os.Stderr, verbose) },
		FileStatter:    osFileStatter{},
		FFmpegResolver: &defaultFFmpegResolver{},
		ConfigLoader:   &defaultConfigLoader{},
		CodecFactory:   &defaultCodecFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// osFileStatter implements FileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.CheckVersion(ctx, ffmpegPath)
}

func (defaultFFmpegResolver) CheckEncoder(ctx context.Context, ffmpegPath string) error {
	return ffmpeg.CheckEncoder(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(getenv func(string) string) (config.Config, error) {
	return config.LoadEnv(getenv)
}

// defaultCodecFactory implements CodecFactory with FFmpeg.
type defaultCodecFactory struct{}

func (defaultCodecFactory) NewCodec(ffmpegPath string) (Codec, error) {
	c, err := audio.NewFFmpegCodec(ffmpegPath)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Compile-time interface verification.
var (
	_ FileStatter    = osFileStatter{}
	_ FFmpegResolver = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader   = (*defaultConfigLoader)(nil)
	_ CodecFactory   = (*defaultCodecFactory)(nil)
	_ Codec          = (*audio.FFmpegCodec)(nil)
)
