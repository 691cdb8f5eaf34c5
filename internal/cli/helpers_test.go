package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-sessionmix/internal/config"
	"github.com/alnah/go-sessionmix/internal/mix"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	codecFactory   *mockCodecFactory
	codec          *mockCodec
	logs           *observer.ObservedLogs
	stdout         *syncBuffer
	stderr         *syncBuffer
}

const testRunID = "00000000-0000-4000-8000-00000000beef"

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv() (*Env, *testMocks) {
	codec := &mockCodec{clipLength: 100 * time.Millisecond}
	core, logs := observer.New(zap.DebugLevel)

	mocks := &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		codecFactory:   &mockCodecFactory{codec: codec},
		codec:          codec,
		logs:           logs,
		stdout:         &syncBuffer{},
		stderr:         &syncBuffer{},
	}

	env := &Env{
		Stdout:         mocks.stdout,
		Stderr:         mocks.stderr,
		Getenv:         staticEnv(nil),
		Now:            fixedTime(time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)),
		NewRunID:       func() string { return testRunID },
		NewLogger:      func(bool) *zap.Logger { return zap.New(core) },
		FileStatter:    osFileStatter{},
		FFmpegResolver: mocks.ffmpegResolver,
		ConfigLoader:   mocks.configLoader,
		CodecFactory:   mocks.codecFactory,
	}

	return env, mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// createCmd creates a cobra.Command carrying ctx, as run functions expect.
func createCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}

// createAudioTree lays out every session's clips (and optionally the bell)
// under a temp dir and returns it.
func createAudioTree(t *testing.T, withBell bool) string {
	t.Helper()
	dir := t.TempDir()
	for _, s := range mix.Sessions() {
		if err := os.MkdirAll(s.Dir(dir), 0750); err != nil {
			t.Fatalf("failed to create session dir: %v", err)
		}
		for _, c := range mix.Clips {
			if err := os.WriteFile(s.InputPath(dir, c), []byte("fake mp3"), 0644); err != nil {
				t.Fatalf("failed to create clip: %v", err)
			}
		}
	}
	if withBell {
		bell := mix.BellPath(dir)
		if err := os.MkdirAll(filepath.Dir(bell), 0750); err != nil {
			t.Fatalf("failed to create bell dir: %v", err)
		}
		if err := os.WriteFile(bell, []byte("fake bell"), 0644); err != nil {
			t.Fatalf("failed to create bell: %v", err)
		}
	}
	return dir
}

// configWithDirs returns a ConfigLoader that returns the given directories.
func configWithDirs(audioDir, outputDir string) *mockConfigLoader {
	return &mockConfigLoader{
		LoadFunc: func() (config.Config, error) {
			return config.Config{AudioDir: audioDir, OutputDir: outputDir}, nil
		},
	}
}
