package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/alnah/go-sessionmix/internal/ffmpeg"
)

// Export settings. The mixed sessions are always MP3 at a fixed bitrate.
const (
	// Bitrate is the constant bitrate of every exported file.
	Bitrate = "192k"

	// mp3Encoder is the FFmpeg encoder used for export.
	mp3Encoder = "libmp3lame"

	// OutputFileMode is applied to every exported file before it is
	// installed; staged temp files start out as 0600.
	OutputFileMode os.FileMode = 0o644
)

// Compile-time interface implementation check.
var _ Codec = (*FFmpegCodec)(nil)

// Codec decodes clips to PCM segments and encodes segments to files.
type Codec interface {
	// Decode reads the clip at path into a Segment.
	Decode(ctx context.Context, path string) (*Segment, error)
	// Encode writes seg to path as MP3, replacing any existing file.
	Encode(ctx context.Context, seg *Segment, path string) error
	// Probe returns the duration of the clip at path without decoding it.
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// FFmpegCodec implements Codec by piping raw PCM through FFmpeg.
type FFmpegCodec struct {
	ffmpegPath string
	format     Format
	bitrate    string

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	statter fileStatter
	files   fileWriter
}

// CodecOption configures an FFmpegCodec.
type CodecOption func(*FFmpegCodec)

// WithFormat sets the PCM format clips are decoded to.
// Default: 44.1 kHz stereo.
func WithFormat(f Format) CodecOption {
	return func(c *FFmpegCodec) {
		c.format = f
	}
}

// WithCommandRunner sets the command runner.
func WithCommandRunner(r commandRunner) CodecOption {
	return func(c *FFmpegCodec) {
		c.cmd = r
	}
}

// WithFileStatter sets the file statter.
func WithFileStatter(s fileStatter) CodecOption {
	return func(c *FFmpegCodec) {
		c.statter = s
	}
}

// WithFileWriter sets the file writer used by Encode.
func WithFileWriter(w fileWriter) CodecOption {
	return func(c *FFmpegCodec) {
		c.files = w
	}
}

// NewFFmpegCodec creates a codec that runs the FFmpeg binary at ffmpegPath.
func NewFFmpegCodec(ffmpegPath string, opts ...CodecOption) (*FFmpegCodec, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	c := &FFmpegCodec{
		ffmpegPath: ffmpegPath,
		format:     DefaultFormat,
		bitrate:    Bitrate,
		cmd:        osCommandRunner{},
		statter:    osFileStatter{},
		files:      osFileWriter{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.format.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Format returns the PCM format produced by Decode.
func (c *FFmpegCodec) Format() Format {
	return c.format
}

// Decode converts the clip at path to interleaved s16le PCM in the codec's format.
func (c *FFmpegCodec) Decode(ctx context.Context, path string) (*Segment, error) {
	if err := c.checkExists(path); err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	stderr, err := c.cmd.Run(ctx, c.ffmpegPath, decodeArgs(path, c.format), nil, &stdout)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v\nOutput: %s", ErrDecodeFailed, path, err, string(stderr))
	}

	return segmentFromBytes(c.format, stdout.Bytes())
}

// decodeArgs returns FFmpeg arguments that decode path to raw PCM on stdout.
func decodeArgs(path string, f Format) []string {
	return []string{
		"-v", "error",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"pipe:1",
	}
}

// Encode pipes seg into FFmpeg and writes an MP3 to path.
// The file is written next to path under a temporary name and renamed into
// place only after FFmpeg succeeds, so a failed export never leaves a
// truncated file at path.
func (c *FFmpegCodec) Encode(ctx context.Context, seg *Segment, path string) error {
	if seg.Format() != c.format {
		return fmt.Errorf("%w: encode %s with codec %s", ErrFormatMismatch, seg.Format(), c.format)
	}

	tmp, err := c.files.CreateTemp(filepath.Dir(path), ".sessionmix-*.mp3")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close() // FFmpeg reopens the file by name

	success := false
	defer func() {
		if !success {
			_ = c.files.Remove(tmpPath) // best-effort cleanup; original error takes precedence
		}
	}()

	stderr, err := c.cmd.Run(ctx, c.ffmpegPath, encodeArgs(c.format, c.bitrate, tmpPath), bytes.NewReader(seg.Bytes()), nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrEncodeFailed, path, err, string(stderr))
	}

	if err := c.files.Chmod(tmpPath, OutputFileMode); err != nil {
		return fmt.Errorf("%w: set mode on %s: %v", ErrEncodeFailed, path, err)
	}
	if err := c.files.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: install %s: %v", ErrEncodeFailed, path, err)
	}

	success = true
	return nil
}

// encodeArgs returns FFmpeg arguments that read raw PCM from stdin and write MP3.
func encodeArgs(f Format, bitrate, output string) []string {
	return []string{
		"-y",
		"-v", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-i", "pipe:0",
		"-c:a", mp3Encoder,
		"-b:a", bitrate,
		"-f", "mp3",
		output,
	}
}

// Probe returns the duration reported in FFmpeg's input banner.
func (c *FFmpegCodec) Probe(ctx context.Context, path string) (time.Duration, error) {
	if err := c.checkExists(path); err != nil {
		return 0, err
	}

	// The -i flag with no output shows file info including duration.
	// FFmpeg exits non-zero because no output is given, so the error is
	// only fatal when nothing was printed.
	stderr, err := c.cmd.Run(ctx, c.ffmpegPath, []string{"-hide_banner", "-i", path}, nil, nil)
	if err != nil && len(stderr) == 0 {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}

	d, err := parseDurationFromFFmpegOutput(string(stderr))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	return d, nil
}

// checkExists maps a missing input to ErrFileNotFound before FFmpeg runs,
// so callers can tell missing clips from undecodable ones.
func (c *FFmpegCodec) checkExists(path string) error {
	if _, err := c.statter.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	return nil
}

// durationRe matches the banner line "Duration: 00:05:23.45".
var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

// parseDurationFromFFmpegOutput extracts duration from FFmpeg stderr.
func parseDurationFromFFmpegOutput(output string) (time.Duration, error) {
	if matches := durationRe.FindStringSubmatch(output); matches != nil {
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4]), nil
	}
	return 0, fmt.Errorf("could not parse duration from ffmpeg output")
}

// parseTimeComponents converts HH:MM:SS.frac strings to Duration.
// The fractional part may have any number of digits; it is normalized to milliseconds.
func parseTimeComponents(hours, minutes, seconds, fractional string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	for len(fractional) < 3 {
		fractional += "0"
	}
	ms, _ := strconv.Atoi(fractional[:3])

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}
