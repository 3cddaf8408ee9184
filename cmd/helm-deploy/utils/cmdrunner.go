package utils

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/shini4i/helm-deploy/internal/ports"
)

// interruptGrace is how long a cancelled command may take to exit after SIGINT before it is killed.
const interruptGrace = 30 * time.Second

var _ ports.CmdRunner = (*RealCmdRunner)(nil)

// RealCmdRunner executes commands using the operating system.
type RealCmdRunner struct {
	// Stdout and Stderr receive streamed output. They default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes cmd with args and captures stdout and stderr strings.
func (r *RealCmdRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	command := newCommand(ctx, cmd, args...)

	var stdoutBuffer, stderrBuffer bytes.Buffer
	command.Stdout = &stdoutBuffer
	command.Stderr = &stderrBuffer

	err := command.Run()

	return stdoutBuffer.String(), stderrBuffer.String(), err
}

// Stream executes cmd with args, forwarding its output as it is produced and capturing it as well.
func (r *RealCmdRunner) Stream(ctx context.Context, stdin io.Reader, cmd string, args ...string) (string, string, error) {
	command := newCommand(ctx, cmd, args...)
	command.Stdin = stdin

	var stdoutBuffer, stderrBuffer bytes.Buffer
	command.Stdout = io.MultiWriter(orDefault(r.Stdout, os.Stdout), &stdoutBuffer)
	command.Stderr = io.MultiWriter(orDefault(r.Stderr, os.Stderr), &stderrBuffer)

	err := command.Run()

	return stdoutBuffer.String(), stderrBuffer.String(), err
}

// newCommand builds a command that receives SIGINT, not SIGKILL, when ctx is cancelled,
// so helm can release its locks before exiting.
func newCommand(ctx context.Context, cmd string, args ...string) *exec.Cmd {
	command := exec.CommandContext(ctx, cmd, args...) // #nosec G204
	command.Cancel = func() error {
		return command.Process.Signal(os.Interrupt)
	}
	command.WaitDelay = interruptGrace
	return command
}

func orDefault(w io.Writer, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
