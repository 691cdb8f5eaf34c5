package audio

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// commandRunner executes an external command with optional stdin and stdout
// streams. It returns whatever the command wrote to stderr.
type commandRunner interface {
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) ([]byte, error)
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// fileWriter creates, renames and removes output files.
type fileWriter interface {
	CreateTemp(dir, pattern string) (*os.File, error)
	Chmod(name string, mode os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// --- Default implementations using real OS functions ---

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) ([]byte, error) {
	// #nosec G204 -- name and args are built by the codec, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.Bytes(), err
}

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// osFileWriter implements fileWriter using the os package.
type osFileWriter struct{}

func (osFileWriter) CreateTemp(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

func (osFileWriter) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(name, mode)
}

func (osFileWriter) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (osFileWriter) Remove(name string) error {
	return os.Remove(name)
}
