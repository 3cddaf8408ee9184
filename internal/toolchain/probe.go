package toolchain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blang/semver"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/shini4i/helm-deploy/internal/ports"
)

// versionRegex extracts the version from "helm version --short", for instance "v3.14.2+gc309b6f".
var versionRegex = regexp.MustCompile(`v?(\d+\.\d+\.\d+[\w.\-+]*)`)

// Prober inspects the helm binary provisioned by the caller's environment.
type Prober struct {
	Runner     ports.CmdRunner
	HelmBinary string
	Log        *logging.Logger
}

// Detect returns the version of the helm binary.
func (p Prober) Detect(ctx context.Context) (semver.Version, error) {
	stdout, stderr, err := p.Runner.Run(ctx, p.helm(), "version", "--short")
	if err != nil {
		return semver.Version{}, fmt.Errorf("helm version command failed %q: %w", strings.TrimSpace(stderr), err)
	}

	return ParseVersion(stdout)
}

// ParseVersion reads a semantic version out of helm's version output.
func ParseVersion(raw string) (semver.Version, error) {
	matches := versionRegex.FindStringSubmatch(raw)
	if len(matches) == 0 {
		return semver.Version{}, fmt.Errorf("unable to parse helm version output: %q", raw)
	}
	return semver.ParseTolerant(matches[1])
}

// Check detects the helm version and compares it with the pinned one.
// It never fails: a mismatch or a failed probe is only logged, provisioning being the caller's job.
// The zero version is returned when detection fails.
func (p Prober) Check(ctx context.Context, pinned string) semver.Version {
	detected, err := p.Detect(ctx)
	if err != nil {
		p.Log.Warningf("Unable to determine helm version, assuming helm 3: %v", err)
		return semver.Version{}
	}

	p.Log.Debugf("Detected helm version %s", detected)

	if pinned == "" || strings.EqualFold(pinned, models.DefaultHelmVersion) {
		return detected
	}

	want, err := semver.ParseTolerant(pinned)
	if err != nil {
		p.Log.Warningf("Ignoring unparsable helm-version %q: %v", pinned, err)
		return detected
	}

	if !Matches(want, detected) {
		p.Log.Warningf("helm-version is %s but helm %s is installed", pinned, detected)
	}

	return detected
}

// Matches compares versions ignoring build metadata.
func Matches(want, got semver.Version) bool {
	want.Build = nil
	got.Build = nil
	return want.EQ(got)
}

func (p Prober) helm() string {
	if p.HelmBinary == "" {
		return "helm"
	}
	return p.HelmBinary
}
