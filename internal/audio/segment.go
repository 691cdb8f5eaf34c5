package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Format describes the PCM layout of a Segment.
type Format struct {
	SampleRate int // Frames per second.
	Channels   int // Interleaved channels per frame.
}

// DefaultFormat is the working format every clip is decoded to.
// Decoding all inputs to one format lets segments be concatenated and
// overlaid without resampling.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2}

// Validate reports whether the format can describe audio.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, f.SampleRate, f.Channels)
	}
	return nil
}

// String returns a compact description for logs, e.g. "44100Hz/2ch".
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// Segment is an immutable in-memory buffer of interleaved signed 16-bit PCM.
// Every operation returns a new Segment; the receiver is never modified.
type Segment struct {
	format  Format
	samples []int16
}

// NewSegment wraps samples in a Segment. The slice is not copied and must not
// be modified afterwards.
func NewSegment(f Format, samples []int16) (*Segment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(samples)%f.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a multiple of %d channels",
			ErrInvalidFormat, len(samples), f.Channels)
	}
	return &Segment{format: f, samples: samples}, nil
}

// Silent returns a segment of digital silence lasting d.
func Silent(f Format, d time.Duration) (*Segment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	frames := framesAt(f, d)
	return &Segment{format: f, samples: make([]int16, frames*f.Channels)}, nil
}

// Format returns the PCM layout of the segment.
func (s *Segment) Format() Format {
	return s.format
}

// Samples returns the interleaved samples. Callers must treat the slice as read-only.
func (s *Segment) Samples() []int16 {
	return s.samples
}

// Frames returns the number of frames (one sample per channel).
func (s *Segment) Frames() int {
	return len(s.samples) / s.format.Channels
}

// Duration returns the playback length of the segment.
func (s *Segment) Duration() time.Duration {
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.format.SampleRate)
}

// FramesAt converts a time offset to a frame index, truncating partial frames.
func (s *Segment) FramesAt(d time.Duration) int {
	return framesAt(s.format, d)
}

func framesAt(f Format, d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(f.SampleRate) / int64(time.Second))
}

// Gain returns a copy scaled by db decibels. Negative values attenuate.
// Results saturate at the int16 range.
func (s *Segment) Gain(db float64) *Segment {
	factor := math.Pow(10, db/20)
	out := make([]int16, len(s.samples))
	for i, v := range s.samples {
		out[i] = clip(float64(v) * factor)
	}
	return &Segment{format: s.format, samples: out}
}

// Append returns the receiver followed by each of others, in order.
func (s *Segment) Append(others ...*Segment) (*Segment, error) {
	total := len(s.samples)
	for _, o := range others {
		if o.format != s.format {
			return nil, fmt.Errorf("%w: append %s to %s", ErrFormatMismatch, o.format, s.format)
		}
		total += len(o.samples)
	}

	out := make([]int16, 0, total)
	out = append(out, s.samples...)
	for _, o := range others {
		out = append(out, o.samples...)
	}
	return &Segment{format: s.format, samples: out}, nil
}

// Repeat returns n back-to-back copies of the segment. n < 1 yields an empty segment.
func (s *Segment) Repeat(n int) *Segment {
	if n < 1 {
		return &Segment{format: s.format}
	}
	out := make([]int16, 0, len(s.samples)*n)
	for range n {
		out = append(out, s.samples...)
	}
	return &Segment{format: s.format, samples: out}
}

// Slice returns the audio between start and end, clamped to the segment bounds.
func (s *Segment) Slice(start, end time.Duration) *Segment {
	return s.sliceFrames(s.FramesAt(start), s.FramesAt(end))
}

// Head returns the first d of audio, or the whole segment if it is shorter.
func (s *Segment) Head(d time.Duration) *Segment {
	return s.sliceFrames(0, s.FramesAt(d))
}

func (s *Segment) sliceFrames(from, to int) *Segment {
	n := s.Frames()
	from = max(0, min(from, n))
	to = max(from, min(to, n))
	ch := s.format.Channels
	out := make([]int16, (to-from)*ch)
	copy(out, s.samples[from*ch:to*ch])
	return &Segment{format: s.format, samples: out}
}

// Loop returns a segment of exactly frames frames. A shorter source is
// repeated (frames/len + 1 times) and then truncated; a longer one is truncated.
func (s *Segment) Loop(frames int) (*Segment, error) {
	if frames <= 0 {
		return &Segment{format: s.format}, nil
	}
	n := s.Frames()
	if n == 0 {
		return nil, ErrEmptySegment
	}
	src := s
	if n < frames {
		src = s.Repeat(frames/n + 1)
	}
	return src.sliceFrames(0, frames), nil
}

// Overlay returns a copy of the receiver with other mixed in starting at
// offset at. The result always has the receiver's length: audio of other
// running past the end is dropped, and an offset at or beyond the end leaves
// the receiver unchanged. Sums saturate at the int16 range.
func (s *Segment) Overlay(other *Segment, at time.Duration) (*Segment, error) {
	if other.format != s.format {
		return nil, fmt.Errorf("%w: overlay %s onto %s", ErrFormatMismatch, other.format, s.format)
	}

	out := make([]int16, len(s.samples))
	copy(out, s.samples)

	start := s.FramesAt(at) * s.format.Channels
	if start >= len(out) {
		return &Segment{format: s.format, samples: out}, nil
	}
	for i, v := range other.samples {
		j := start + i
		if j >= len(out) {
			break
		}
		out[j] = clip(float64(out[j]) + float64(v))
	}
	return &Segment{format: s.format, samples: out}, nil
}

// Bytes serializes the samples as little-endian s16le PCM.
func (s *Segment) Bytes() []byte {
	buf := make([]byte, len(s.samples)*2)
	for i, v := range s.samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}

// segmentFromBytes parses s16le PCM. A trailing partial frame is dropped.
func segmentFromBytes(f Format, data []byte) (*Segment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	frameBytes := 2 * f.Channels
	data = data[:len(data)-len(data)%frameBytes]

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return &Segment{format: f, samples: samples}, nil
}

// clip truncates v toward zero and saturates it to the int16 range.
func clip(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
