package app

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/shini4i/helm-deploy/internal/inputs"
)

// ReportProvider names the system a run summary is posted to.
type ReportProvider string

const (
	ReportProviderNone   ReportProvider = ""
	ReportProviderGitLab ReportProvider = "gitlab"
)

// GitLabReportConfig identifies the Merge Request receiving the summary note.
type GitLabReportConfig struct {
	BaseURL         string
	Token           string
	ProjectID       string
	MergeRequestIID int
}

// ReportConfig selects and configures the outcome reporter.
type ReportConfig struct {
	Provider ReportProvider
	GitLab   GitLabReportConfig
}

// Config captures runtime parameters for a deployment run.
type Config struct {
	Inputs      inputs.Raw
	TempDirBase string
	HelmBinary  string
	Debug       bool
	Version     string
	Report      *ReportConfig
}

// ConfigOption mutates a Config during construction.
type ConfigOption func(*Config)

// NewConfig creates a Config from raw action inputs, applies options and validates the result.
func NewConfig(raw inputs.Raw, opts ...ConfigOption) (Config, error) {
	if raw == nil {
		return Config{}, errors.New("action inputs must be provided")
	}

	cfg := Config{
		Inputs:      maps.Clone(raw),
		TempDirBase: os.TempDir(),
		HelmBinary:  "helm",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Report.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WithTempDirBase overrides the base directory for the inline values file.
func WithTempDirBase(path string) ConfigOption {
	return func(cfg *Config) {
		if path != "" {
			cfg.TempDirBase = path
		}
	}
}

// WithHelmBinary overrides the helm executable.
func WithHelmBinary(binary string) ConfigOption {
	return func(cfg *Config) {
		if binary != "" {
			cfg.HelmBinary = binary
		}
	}
}

// WithDebug toggles verbose logging.
func WithDebug(enabled bool) ConfigOption {
	return func(cfg *Config) {
		cfg.Debug = enabled
	}
}

// WithVersion sets the application version used in log output.
func WithVersion(version string) ConfigOption {
	return func(cfg *Config) {
		cfg.Version = version
	}
}

// WithReportConfig enables posting a run summary.
func WithReportConfig(report ReportConfig) ConfigOption {
	return func(cfg *Config) {
		cfg.Report = &report
	}
}

func (r *ReportConfig) validate() error {
	if r == nil {
		return nil
	}

	switch r.Provider {
	case ReportProviderNone:
		return nil
	case ReportProviderGitLab:
		if r.GitLab.BaseURL == "" {
			return errors.New("gitlab report requires a base URL")
		}
		if r.GitLab.Token == "" {
			return errors.New("gitlab report requires a token")
		}
		if r.GitLab.ProjectID == "" {
			return errors.New("gitlab report requires a project ID")
		}
		if r.GitLab.MergeRequestIID <= 0 {
			return errors.New("gitlab report requires a merge request IID")
		}
		return nil
	default:
		return fmt.Errorf("unsupported report provider %q", r.Provider)
	}
}
