package inputs

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/shini4i/helm-deploy/internal/registry"
	"github.com/shini4i/helm-deploy/internal/repository"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the upper-cased input name to form its environment variable.
const EnvPrefix = "GHINPUT_"

const (
	Release      = "release"
	Namespace    = "namespace"
	Repo         = repository.InputRepo
	RepoName     = repository.InputRepoName
	Chart        = "chart"
	ChartVersion = "chart-version"
	Values       = "values"
	ValuesFiles  = "values-files"
	Mode         = "mode"
	DryRun       = "dry-run"
	Atomic       = "atomic"
	Timeout      = "timeout"
	HelmVersion  = "helm-version"
	ECRLogin     = "ecr-login"
)

// Names lists every recognised input.
var Names = []string{
	Release,
	Namespace,
	Repo,
	RepoName,
	Chart,
	ChartVersion,
	Values,
	ValuesFiles,
	Mode,
	DryRun,
	Atomic,
	Timeout,
	HelmVersion,
	ECRLogin,
}

// Raw holds inputs exactly as received. A missing key and an empty value mean the same thing.
type Raw map[string]string

// EnvName returns the environment variable carrying input name, e.g. GHINPUT_CHART_VERSION.
func EnvName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// FromEnv collects every known input through lookup.
func FromEnv(lookup func(string) (string, bool)) Raw {
	raw := Raw{}
	for _, name := range Names {
		if value, ok := lookup(EnvName(name)); ok {
			raw[name] = value
		}
	}
	return raw
}

// Normalize validates raw inputs and builds the DeploymentRequest. It has no side effects.
func Normalize(raw Raw) (models.DeploymentRequest, error) {
	mode, err := models.ParseMode(raw.scalar(Mode))
	if err != nil {
		return models.DeploymentRequest{}, &models.ValidationError{Input: Mode, Reason: err.Error()}
	}

	req := models.DeploymentRequest{
		Release:      raw.scalar(Release),
		Namespace:    raw.scalar(Namespace),
		Chart:        raw.scalar(Chart),
		ChartVersion: raw.scalar(ChartVersion),
		Values:       raw.values(),
		ValuesFiles:  SplitPaths(raw[ValuesFiles]),
		Mode:         mode,
		HelmVersion:  models.DefaultHelmVersion,
	}

	if err := requireValue(Release, req.Release); err != nil {
		return models.DeploymentRequest{}, err
	}
	if err := requireValue(Namespace, req.Namespace); err != nil {
		return models.DeploymentRequest{}, err
	}
	if mode.UsesChart() {
		if err := requireValue(Chart, req.Chart); err != nil {
			return models.DeploymentRequest{}, err
		}
	}

	if req.Repository, err = repository.NewBinding(raw.scalar(RepoName), raw.scalar(Repo)); err != nil {
		return models.DeploymentRequest{}, err
	}

	if req.DryRun, err = ParseBool(DryRun, raw.scalar(DryRun), false); err != nil {
		return models.DeploymentRequest{}, err
	}
	if req.Atomic, err = ParseBool(Atomic, raw.scalar(Atomic), true); err != nil {
		return models.DeploymentRequest{}, err
	}
	if req.ECRLogin, err = ParseBool(ECRLogin, raw.scalar(ECRLogin), false); err != nil {
		return models.DeploymentRequest{}, err
	}
	if req.ECRLogin && mode.UsesChart() {
		if _, _, ok := registry.ParseECRHost(req.Chart); !ok {
			return models.DeploymentRequest{}, &models.ValidationError{Input: ECRLogin, Reason: registry.ErrNotECR.Error()}
		}
	}

	if req.Timeout, err = parseTimeout(raw.scalar(Timeout)); err != nil {
		return models.DeploymentRequest{}, err
	}

	if version := raw.scalar(HelmVersion); version != "" && !strings.EqualFold(version, models.DefaultHelmVersion) {
		if err := validateHelmVersion(version); err != nil {
			return models.DeploymentRequest{}, err
		}
		req.HelmVersion = version
	}

	// Uninstall ignores values, so their content is not checked either.
	if mode.UsesChart() && req.HasInlineValues() {
		if err := validateValues(req.Values); err != nil {
			return models.DeploymentRequest{}, err
		}
	}

	return req, nil
}

// ParseBool accepts "true" or "false" in any letter case. An empty value yields fallback.
func ParseBool(name, value string, fallback bool) (bool, error) {
	switch {
	case value == "":
		return fallback, nil
	case strings.EqualFold(value, "true"):
		return true, nil
	case strings.EqualFold(value, "false"):
		return false, nil
	default:
		return false, &models.ValidationError{Input: name, Reason: "expected true or false, got " + value}
	}
}

// SplitPaths splits a newline separated list and drops blank lines. Order is kept.
func SplitPaths(value string) []string {
	var paths []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

func (r Raw) scalar(name string) string {
	return strings.TrimSpace(r[name])
}

// values returns the inline values verbatim, or nothing when they are blank.
func (r Raw) values() string {
	if strings.TrimSpace(r[Values]) == "" {
		return ""
	}
	return r[Values]
}

func requireValue(name, value string) error {
	if value == "" {
		return &models.ValidationError{Input: name, Reason: "is required"}
	}
	return nil
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, &models.ValidationError{Input: Timeout, Reason: "expected a duration such as 300s or 5m, got " + value}
	}
	if timeout <= 0 {
		return 0, &models.ValidationError{Input: Timeout, Reason: "must be positive"}
	}

	return timeout, nil
}

func validateHelmVersion(value string) error {
	if _, err := semver.ParseTolerant(value); err != nil {
		return &models.ValidationError{Input: HelmVersion, Reason: "expected latest or a semantic version: " + err.Error()}
	}
	return nil
}

// validateValues checks that every YAML document in values parses.
func validateValues(values string) error {
	decoder := yaml.NewDecoder(strings.NewReader(values))
	for {
		var document any
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &models.ValidationError{Input: Values, Reason: "unable to parse YAML: " + err.Error()}
		}
	}
}
