package mix_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/alnah/go-sessionmix/internal/audio"
	"github.com/alnah/go-sessionmix/internal/mix"
)

// msMono is 1 kHz mono: one frame per millisecond keeps offsets readable.
var msMono = audio.Format{SampleRate: 1000, Channels: 1}

const (
	testAudioDir  = "/audio"
	testOutputDir = "/out"
)

// constant returns ms milliseconds of the sample value v.
func constant(t *testing.T, ms int, v int16) *audio.Segment {
	t.Helper()
	samples := make([]int16, ms)
	for i := range samples {
		samples[i] = v
	}
	seg, err := audio.NewSegment(msMono, samples)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	return seg
}

// ---------------------------------------------------------------------------
// mockCodec - in-memory clips keyed by path
// ---------------------------------------------------------------------------

type mockCodec struct {
	mu        sync.Mutex
	clips     map[string]*audio.Segment
	decodeErr map[string]error
	encodeErr error
	onDecode  func(path string)

	decoded []string
	encoded map[string]*audio.Segment
}

func newMockCodec() *mockCodec {
	return &mockCodec{
		clips:     make(map[string]*audio.Segment),
		decodeErr: make(map[string]error),
		encoded:   make(map[string]*audio.Segment),
	}
}

func (m *mockCodec) Decode(ctx context.Context, path string) (*audio.Segment, error) {
	if m.onDecode != nil {
		m.onDecode(path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.decoded = append(m.decoded, path)
	if err, ok := m.decodeErr[path]; ok {
		return nil, err
	}
	seg, ok := m.clips[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", audio.ErrFileNotFound, path)
	}
	return seg, nil
}

func (m *mockCodec) Encode(ctx context.Context, seg *audio.Segment, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.encodeErr != nil {
		return m.encodeErr
	}
	m.encoded[path] = seg
	return nil
}

func (m *mockCodec) addSession(n int, intro, training, outro, music *audio.Segment) {
	s, _ := mix.Lookup(n)
	m.clips[s.InputPath(testAudioDir, mix.ClipIntro)] = intro
	m.clips[s.InputPath(testAudioDir, mix.ClipTraining)] = training
	m.clips[s.InputPath(testAudioDir, mix.ClipOutro)] = outro
	m.clips[s.InputPath(testAudioDir, mix.ClipMusic)] = music
}

func (m *mockCodec) addBell(seg *audio.Segment) {
	m.clips[mix.BellPath(testAudioDir)] = seg
}

func (m *mockCodec) output(n int) *audio.Segment {
	s, _ := mix.Lookup(n)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.encoded[s.OutputPath(testOutputDir)]
}

func (m *mockCodec) decodedPath(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.decoded {
		if p == path {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// mockStatter - existence check for the bell clip
// ---------------------------------------------------------------------------

type mockStatter struct {
	existing map[string]bool
}

func (m mockStatter) Stat(name string) (os.FileInfo, error) {
	if m.existing[name] {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

// bellPresent reports the bell clip as existing.
func bellPresent() mix.FileStatter {
	return mockStatter{existing: map[string]bool{mix.BellPath(testAudioDir): true}}
}

// bellAbsent reports every file as missing.
func bellAbsent() mix.FileStatter {
	return mockStatter{}
}
