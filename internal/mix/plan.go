package mix

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"
)

const (
	// SessionCount is the number of sessions in the programme.
	SessionCount = 10

	// BellLength is how much of the bell clip is kept.
	BellLength = 500 * time.Millisecond

	// DefaultMusicGainDB is the reduction applied to background music.
	DefaultMusicGainDB = -20.0

	// bellDir and bellFile locate the shared bell clip under the audio directory.
	bellDir  = "Golden_Box"
	bellFile = "bell"
)

// Clip names one of the four source files of a session.
type Clip string

// Source clips, in load order.
const (
	ClipIntro    Clip = "intro"
	ClipTraining Clip = "training"
	ClipOutro    Clip = "outro"
	ClipMusic    Clip = "music"
)

// Clips lists every clip a session needs.
var Clips = []Clip{ClipIntro, ClipTraining, ClipOutro, ClipMusic}

// BellCue is a bell position in the final mix, in whole minutes and seconds.
type BellCue struct {
	Minutes int
	Seconds int
}

// Offset returns the cue position from the start of the mixed track.
func (c BellCue) Offset() time.Duration {
	return time.Duration(c.Minutes)*time.Minute + time.Duration(c.Seconds)*time.Second
}

// String returns the cue as "5m45s".
func (c BellCue) String() string {
	return fmt.Sprintf("%dm%02ds", c.Minutes, c.Seconds)
}

// Session is one numbered training session.
type Session struct {
	Number int
	Bells  []BellCue
}

// bellCues holds the round timings of the boxing sessions.
var bellCues = map[int][]BellCue{
	// 3 x 1-minute rounds.
	9: {{5, 45}, {6, 45}, {7, 15}, {8, 15}, {8, 40}, {9, 40}},
	// 1 x 3-minute round.
	10: {{5, 32}, {8, 32}},
}

// Sessions returns sessions 1 through SessionCount in order.
func Sessions() []Session {
	out := make([]Session, 0, SessionCount)
	for n := 1; n <= SessionCount; n++ {
		out = append(out, newSession(n))
	}
	return out
}

// Lookup returns the session with number n.
func Lookup(n int) (Session, error) {
	if n < 1 || n > SessionCount {
		return Session{}, fmt.Errorf("%w: %d (valid: 1-%d)", ErrUnknownSession, n, SessionCount)
	}
	return newSession(n), nil
}

// newSession builds session n with its own copy of the cue table.
func newSession(n int) Session {
	return Session{Number: n, Bells: slices.Clone(bellCues[n])}
}

// HasBells reports whether the session places any bell cues.
func (s Session) HasBells() bool {
	return len(s.Bells) > 0
}

// Name returns the directory name of the session, e.g. "session-09".
func (s Session) Name() string {
	return fmt.Sprintf("session-%02d", s.Number)
}

// Dir returns the folder holding the session's clips.
func (s Session) Dir(audioDir string) string {
	return filepath.Join(audioDir, s.Name())
}

// InputPath returns the path of clip c for this session.
func (s Session) InputPath(audioDir string, c Clip) string {
	return filepath.Join(s.Dir(audioDir), string(c)+".mp3")
}

// OutputPath returns where the mixed session is written.
func (s Session) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, s.Name()+"-mixed.mp3")
}

// BellPath returns the path of the shared bell clip. The file has no extension.
func BellPath(audioDir string) string {
	return filepath.Join(audioDir, bellDir, bellFile)
}
