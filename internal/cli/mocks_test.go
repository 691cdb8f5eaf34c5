package cli

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-sessionmix/internal/audio"
	"github.com/alnah/go-sessionmix/internal/config"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(ctx context.Context) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)
	CheckEncoderFunc func(ctx context.Context, ffmpegPath string) error

	mu                sync.Mutex
	resolveCalls      int
	checkEncoderCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockFFmpegResolver) CheckEncoder(ctx context.Context, ffmpegPath string) error {
	m.mu.Lock()
	m.checkEncoderCalls++
	m.mu.Unlock()

	if m.CheckEncoderFunc != nil {
		return m.CheckEncoderFunc(ctx, ffmpegPath)
	}
	return nil
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

func (m *mockFFmpegResolver) CheckEncoderCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkEncoderCalls
}

// ---------------------------------------------------------------------------
// Mock FileStatter
// ---------------------------------------------------------------------------

// mockFileStatter reports the files in sizes as present; any other path is missing.
type mockFileStatter struct {
	sizes map[string]int64

	mu    sync.Mutex
	paths []string
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	m.mu.Lock()
	m.paths = append(m.paths, name)
	m.mu.Unlock()

	size, ok := m.sizes[name]
	if !ok {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}
	return mockFileInfo{name: name, size: size}, nil
}

func (m *mockFileStatter) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

type mockFileInfo struct {
	name string
	size int64
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return m.size }
func (m mockFileInfo) Mode() os.FileMode  { return 0o644 }
func (m mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m mockFileInfo) IsDir() bool        { return false }
func (m mockFileInfo) Sys() any           { return nil }

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
	getenv    func(string) string
}

func (m *mockConfigLoader) Load(getenv func(string) string) (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.getenv = getenv
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

// Getenv returns the getenv function passed to the last Load call.
func (m *mockConfigLoader) Getenv() func(string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getenv
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock CodecFactory + Codec
// ---------------------------------------------------------------------------

// testFormat is 1 kHz mono so test clips stay tiny.
var testFormat = audio.Format{SampleRate: 1000, Channels: 1}

// mockCodec decodes any existing file to clipLength of silence and records
// encodes instead of writing MP3s.
type mockCodec struct {
	clipLength time.Duration
	ProbeFunc  func(ctx context.Context, path string) (time.Duration, error)

	mu      sync.Mutex
	encoded []string
}

func (m *mockCodec) Decode(ctx context.Context, path string) (*audio.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", audio.ErrFileNotFound, path)
	}
	return audio.Silent(testFormat, m.clipLength)
}

func (m *mockCodec) Encode(ctx context.Context, seg *audio.Segment, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encoded = append(m.encoded, path)
	return nil
}

func (m *mockCodec) Probe(ctx context.Context, path string) (time.Duration, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	return m.clipLength, nil
}

func (m *mockCodec) Encoded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.encoded...)
}

type mockCodecFactory struct {
	codec   *mockCodec
	NewFunc func(ffmpegPath string) (Codec, error)

	mu       sync.Mutex
	newCalls int
}

func (m *mockCodecFactory) NewCodec(ffmpegPath string) (Codec, error) {
	m.mu.Lock()
	m.newCalls++
	m.mu.Unlock()

	if m.NewFunc != nil {
		return m.NewFunc(ffmpegPath)
	}
	return m.codec, nil
}

func (m *mockCodecFactory) NewCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newCalls
}
