package executor

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/shini4i/helm-deploy/internal/ports"
)

var cyan = color.New(color.FgCyan, color.Bold).SprintFunc()

// Executor runs the steps of a DeploymentPlan in order.
type Executor struct {
	Runner ports.CmdRunner
	Log    *logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Execute runs every step of plan sequentially and stops at the first failure.
// The returned result always describes the last step that ran.
func (e Executor) Execute(ctx context.Context, plan models.DeploymentPlan) (models.ExecutionResult, error) {
	now := e.Now
	if now == nil {
		now = time.Now
	}

	start := now()
	var result models.ExecutionResult

	for _, step := range plan.Steps() {
		e.Log.Infof("===> Running %s for [%s]", step.Kind, cyan(step.Target))
		e.Log.Debugf("▶ %s", step)

		var stdin io.Reader
		if step.Stdin != "" {
			stdin = strings.NewReader(step.Stdin)
		}

		stdout, stderr, err := e.Runner.Stream(ctx, stdin, step.Command, step.Args...)

		result = models.ExecutionResult{
			Step:     step.Kind,
			ExitCode: exitCode(err),
			Stdout:   stdout,
			Stderr:   stderr,
			Elapsed:  now().Sub(start),
		}

		if err == nil {
			continue
		}

		if step.Kind == models.StepChartOperation {
			return result, &models.OperationError{
				Operation: plan.Mode,
				Release:   plan.Release,
				ExitCode:  result.ExitCode,
				Err:       err,
			}
		}

		return result, &models.RegistrationError{Target: step.Target, ExitCode: result.ExitCode, Err: err}
	}

	return result, nil
}

// exitCode returns the process exit code carried by err.
// Errors without one, such as a missing binary or a signal, yield 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitCoder ports.ExitCoder
	if errors.As(err, &exitCoder) && exitCoder.ExitCode() > 0 {
		return exitCoder.ExitCode()
	}

	return 1
}
