package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
)

const (
	// noteLengthLimit keeps summaries well under GitLab's note size limit.
	noteLengthLimit = 1_000_000
	outputTailLines = 40
)

// Poster can publish a formatted deployment summary to an upstream system.
type Poster interface {
	Post(ctx context.Context, body string) error
}

// Reporter publishes the outcome of a run.
type Reporter struct {
	Poster Poster
	Log    *logging.Logger
}

// Report posts a summary of the run. runErr is the error the run ended with, if any.
func (r Reporter) Report(ctx context.Context, req models.DeploymentRequest, result models.ExecutionResult, runErr error) error {
	if r.Poster == nil {
		return errors.New("reporter requires a poster implementation")
	}

	if err := r.Poster.Post(ctx, Summary(req, result, runErr)); err != nil {
		return fmt.Errorf("post deployment summary: %w", err)
	}

	if r.Log != nil {
		r.Log.Infof("Posted deployment summary for release %s", req.Release)
	}

	return nil
}

// Summary renders a Markdown description of the run.
func Summary(req models.DeploymentRequest, result models.ExecutionResult, runErr error) string {
	var b strings.Builder

	status := "succeeded"
	icon := ":white_check_mark:"
	if runErr != nil {
		status = "failed"
		icon = ":x:"
	}

	fmt.Fprintf(&b, "### %s helm %s %s\n\n", icon, req.Mode, status)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Release | `%s` |\n", req.Release)
	fmt.Fprintf(&b, "| Namespace | `%s` |\n", req.Namespace)
	if req.Chart != "" && req.Mode.UsesChart() {
		chart := req.Chart
		if req.ChartVersion != "" {
			chart += "@" + req.ChartVersion
		}
		fmt.Fprintf(&b, "| Chart | `%s` |\n", chart)
	}
	if req.DryRun {
		b.WriteString("| Dry run | yes |\n")
	}
	fmt.Fprintf(&b, "| Exit code | %d |\n", models.ExitCode(runErr))
	if result.Elapsed > 0 {
		fmt.Fprintf(&b, "| Duration | %s |\n", result.Elapsed.Round(time.Second))
	}

	if runErr != nil {
		fmt.Fprintf(&b, "\n**Error:** %s\n", runErr)
		if tail := lastLines(result.Stderr, outputTailLines); tail != "" {
			fmt.Fprintf(&b, "\n<details><summary>stderr</summary>\n\n```\n%s\n```\n\n</details>\n", tail)
		}
	}

	return truncate(b.String(), noteLengthLimit)
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func truncate(body string, limit int) string {
	if len(body) <= limit {
		return body
	}
	const marker = "\n\n_Summary truncated_\n"
	cut := limit - len(marker)
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + marker
}
