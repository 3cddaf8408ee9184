package ports

import (
	"context"
	"io"
)

//go:generate mockgen -destination=../../cmd/helm-deploy/mocks/mock_ports.go -package=mocks github.com/shini4i/helm-deploy/internal/ports CmdRunner

// CmdRunner executes external commands.
type CmdRunner interface {
	// Run executes cmd with args and returns its captured output without forwarding it.
	Run(ctx context.Context, cmd string, args ...string) (stdout string, stderr string, err error)
	// Stream executes cmd with args, forwarding output live while capturing it.
	// stdin may be nil.
	Stream(ctx context.Context, stdin io.Reader, cmd string, args ...string) (stdout string, stderr string, err error)
}

// ExitCoder is implemented by errors that carry a process exit code, such as *exec.ExitError.
type ExitCoder interface {
	ExitCode() int
}
