package models

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the chart operation performed for a release.
type Mode string

const (
	ModeInstall   Mode = "install"
	ModeUpgrade   Mode = "upgrade"
	ModeUninstall Mode = "uninstall"
	ModeTemplate  Mode = "template"
)

// DefaultMode is used when no mode is supplied.
const DefaultMode = ModeUpgrade

// DefaultHelmVersion means "whatever the environment provisioned".
const DefaultHelmVersion = "latest"

var supportedModes = []Mode{ModeInstall, ModeUpgrade, ModeUninstall, ModeTemplate}

// ParseMode resolves a mode name, case-insensitively. An empty name yields DefaultMode.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultMode, nil
	}

	for _, mode := range supportedModes {
		if string(mode) == name {
			return mode, nil
		}
	}

	return "", fmt.Errorf("unknown mode %q, expected one of %s", name, joinModes())
}

// UsesChart reports whether the operation needs a chart reference and its values.
func (m Mode) UsesChart() bool {
	return m != ModeUninstall
}

// ChangesCluster reports whether the operation talks to the cluster at all.
func (m Mode) ChangesCluster() bool {
	return m != ModeTemplate
}

func joinModes() string {
	names := make([]string, 0, len(supportedModes))
	for _, mode := range supportedModes {
		names = append(names, string(mode))
	}
	return strings.Join(names, ", ")
}

// RepositoryBinding names a chart repository that must be known to helm before the chart operation.
type RepositoryBinding struct {
	Name string
	URL  string
}

// DeploymentRequest is the validated, typed form of every deployment input.
// Empty strings and zero values mean "not provided".
type DeploymentRequest struct {
	Release      string
	Namespace    string
	Chart        string
	ChartVersion string
	Repository   *RepositoryBinding
	Values       string
	ValuesFiles  []string
	Mode         Mode
	DryRun       bool
	Atomic       bool
	Timeout      time.Duration
	HelmVersion  string
	ECRLogin     bool
}

// HasInlineValues reports whether inline values were supplied.
func (r DeploymentRequest) HasInlineValues() bool {
	return r.Values != ""
}
