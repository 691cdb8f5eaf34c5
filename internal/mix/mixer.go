package mix

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-sessionmix/internal/audio"
)

// Codec loads clips and writes mixed tracks.
// audio.FFmpegCodec satisfies it.
type Codec interface {
	Decode(ctx context.Context, path string) (*audio.Segment, error)
	Encode(ctx context.Context, seg *audio.Segment, path string) error
}

// Result describes one mixed session.
type Result struct {
	Session    int
	OutputPath string
	Duration   time.Duration
	Bells      []time.Duration // Offsets where a bell was overlaid.
}

// Mixer builds session tracks from their source clips.
type Mixer struct {
	codec     Codec
	audioDir  string
	outputDir string
	gainDB    float64
	logger    *zap.Logger
	statter   fileStatter
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithMusicGain sets the gain applied to the music clip, in dB.
// Default: DefaultMusicGainDB.
func WithMusicGain(db float64) Option {
	return func(m *Mixer) {
		m.gainDB = db
	}
}

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(m *Mixer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithFileStatter sets the file statter used to find the bell clip.
// nil is ignored.
func WithFileStatter(s fileStatter) Option {
	return func(m *Mixer) {
		if s != nil {
			m.statter = s
		}
	}
}

// NewMixer creates a Mixer reading clips under audioDir and writing to outputDir.
func NewMixer(codec Codec, audioDir, outputDir string, opts ...Option) *Mixer {
	m := &Mixer{
		codec:     codec,
		audioDir:  audioDir,
		outputDir: outputDir,
		gainDB:    DefaultMusicGainDB,
		logger:    zap.NewNop(),
		statter:   osFileStatter{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MusicGain returns the configured music gain in dB.
func (m *Mixer) MusicGain() float64 {
	return m.gainDB
}

// MixSession produces intro + (training with ducked music) + outro, adds the
// session's bells and exports the result. Any missing or unreadable clip
// fails the session.
func (m *Mixer) MixSession(ctx context.Context, s Session) (Result, error) {
	log := m.logger.With(zap.Int("session", s.Number))
	log.Info("mixing session")

	clips := make(map[Clip]*audio.Segment, len(Clips))
	for _, c := range Clips {
		seg, err := m.codec.Decode(ctx, s.InputPath(m.audioDir, c))
		if err != nil {
			return Result{}, fmt.Errorf("session %d: load %s: %w", s.Number, c, err)
		}
		clips[c] = seg
	}
	intro, training, outro := clips[ClipIntro], clips[ClipTraining], clips[ClipOutro]

	ducked := clips[ClipMusic].Gain(m.gainDB)

	bell, err := m.loadBell(ctx, s, log)
	if err != nil {
		return Result{}, err
	}

	music, err := ducked.Loop(training.Frames())
	if err != nil {
		if errors.Is(err, audio.ErrEmptySegment) {
			return Result{}, fmt.Errorf("session %d: %w", s.Number, ErrEmptyMusic)
		}
		return Result{}, fmt.Errorf("session %d: loop music: %w", s.Number, err)
	}

	bed, err := training.Overlay(music, 0)
	if err != nil {
		return Result{}, fmt.Errorf("session %d: overlay music: %w", s.Number, err)
	}

	final, err := intro.Append(bed, outro)
	if err != nil {
		return Result{}, fmt.Errorf("session %d: assemble: %w", s.Number, err)
	}

	var placed []time.Duration
	if bell != nil {
		final, placed, err = placeBells(final, bell, s.Bells, log)
		if err != nil {
			return Result{}, fmt.Errorf("session %d: bells: %w", s.Number, err)
		}
	}

	out := s.OutputPath(m.outputDir)
	if err := m.codec.Encode(ctx, final, out); err != nil {
		return Result{}, fmt.Errorf("session %d: export: %w", s.Number, err)
	}

	res := Result{
		Session:    s.Number,
		OutputPath: out,
		Duration:   final.Duration(),
		Bells:      placed,
	}
	log.Info("session mixed",
		zap.Duration("duration", res.Duration),
		zap.String("output", out),
		zap.Int("bells", len(placed)))
	return res, nil
}

// loadBell returns the truncated bell for sessions with cues, or nil when the
// session has none or the bell clip is absent.
func (m *Mixer) loadBell(ctx context.Context, s Session, log *zap.Logger) (*audio.Segment, error) {
	if !s.HasBells() {
		return nil, nil
	}

	path := BellPath(m.audioDir)
	if _, err := m.statter.Stat(path); err != nil {
		log.Warn("bell clip not found, mixing without bells", zap.String("path", path))
		return nil, nil
	}

	bell, err := m.codec.Decode(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("session %d: load bell: %w", s.Number, err)
	}
	bell = bell.Head(BellLength)
	log.Info("bell loaded", zap.Duration("length", bell.Duration()))
	return bell, nil
}

// placeBells overlays bell at each cue. Cues at or past the end of the mix
// are skipped.
func placeBells(final, bell *audio.Segment, cues []BellCue, log *zap.Logger) (*audio.Segment, []time.Duration, error) {
	placed := make([]time.Duration, 0, len(cues))
	end := final.Duration()
	for _, cue := range cues {
		at := cue.Offset()
		if at >= end {
			log.Debug("bell cue past end of mix",
				zap.Stringer("cue", cue),
				zap.Duration("mix", end))
			continue
		}
		var err error
		final, err = final.Overlay(bell, at)
		if err != nil {
			return nil, nil, err
		}
		placed = append(placed, at)
		log.Debug("bell placed", zap.Stringer("cue", cue))
	}
	return final, placed, nil
}
