package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shini4i/helm-deploy/internal/app"
	"github.com/shini4i/helm-deploy/internal/helpers"
	"github.com/shini4i/helm-deploy/internal/inputs"
	"github.com/spf13/cobra"
)

// Options describes the collaborators and defaults required to build the CLI.
type Options struct {
	Version     string
	TempDirBase string
	RunApp      func(ctx context.Context, cfg app.Config) error
	InitLogging func(debug bool)
}

var inputUsage = map[string]string{
	inputs.Release:      "Helm release name",
	inputs.Namespace:    "Kubernetes namespace of the release",
	inputs.Repo:         "Chart repository URL",
	inputs.RepoName:     "Local alias for the chart repository",
	inputs.Chart:        "Chart reference (repo/name, oci:// reference or local path)",
	inputs.ChartVersion: "Chart version to deploy",
	inputs.Values:       "Inline YAML values",
	inputs.ValuesFiles:  "Newline separated list of values files",
	inputs.Mode:         "One of install, upgrade, uninstall or template",
	inputs.DryRun:       "Simulate the operation (true/false)",
	inputs.Atomic:       "Roll back on failure (true/false)",
	inputs.Timeout:      "Time to wait for the operation, e.g. 300s or 5m",
	inputs.HelmVersion:  "Expected helm version, or latest",
	inputs.ECRLogin:     "Log in to the Amazon ECR registry of an oci:// chart (true/false)",
}

// Execute builds and runs the Cobra command tree using the supplied options.
func Execute(ctx context.Context, opts Options, args []string) error {
	root := newRootCommand(opts)

	if args != nil {
		root.SetArgs(args)
	}

	return root.ExecuteContext(ctx)
}

// newRootCommand builds the root Cobra command. Every action input is a flag defaulting to its GHINPUT_ variable.
func newRootCommand(opts Options) *cobra.Command {
	flags := loadDefaults(opts)
	values := make(map[string]*string, len(inputs.Names))

	root := &cobra.Command{
		Use:           "helm-deploy",
		Short:         "Deploy a Helm chart from CI inputs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.InitLogging != nil {
				opts.InitLogging(flags.debug)
			}

			raw := inputs.Raw{}
			for name, value := range values {
				raw[name] = *value
			}

			configOptions, err := flags.configOptions(opts)
			if err != nil {
				return err
			}

			cfg, err := app.NewConfig(raw, configOptions...)
			if err != nil {
				return err
			}

			if opts.RunApp == nil {
				return errors.New("no run handler provided")
			}

			return opts.RunApp(cmd.Context(), cfg)
		},
	}

	root.Version = opts.Version

	for _, name := range inputs.Names {
		values[name] = root.Flags().String(name, helpers.GetEnv(inputs.EnvName(name), ""), inputUsage[name])
	}

	root.Flags().BoolVarP(&flags.debug, "debug", "d", flags.debug, "Enable debug mode")
	root.Flags().StringVar(&flags.helmBinary, "helm-binary", flags.helmBinary, "Helm executable to run")
	root.Flags().StringVar(&flags.tempDir, "temp-dir", flags.tempDir, "Base directory for the inline values file")
	root.Flags().StringVar(&flags.reportProvider, "report-provider", flags.reportProvider, "Post a deployment summary using provider (gitlab)")
	root.Flags().StringVar(&flags.gitlabURL, "gitlab-url", flags.gitlabURL, "GitLab base URL (e.g., https://gitlab.com)")
	root.Flags().StringVar(&flags.gitlabToken, "gitlab-token", flags.gitlabToken, "GitLab personal access token")
	root.Flags().StringVar(&flags.gitlabProjectID, "gitlab-project-id", flags.gitlabProjectID, "GitLab project ID")
	root.Flags().IntVar(&flags.gitlabMergeIID, "gitlab-merge-request-iid", flags.gitlabMergeIID, "GitLab merge request IID")

	return root
}

type rootFlags struct {
	debug           bool
	helmBinary      string
	tempDir         string
	reportProvider  string
	gitlabURL       string
	gitlabToken     string
	gitlabProjectID string
	gitlabMergeIID  int
}

func loadDefaults(opts Options) rootFlags {
	return rootFlags{
		debug:           strings.EqualFold(helpers.GetEnv("HELM_DEPLOY_DEBUG", ""), "true"),
		helmBinary:      helpers.GetEnv("HELM_DEPLOY_HELM_BINARY", "helm"),
		tempDir:         helpers.GetEnv("HELM_DEPLOY_TEMP_DIR", opts.TempDirBase),
		reportProvider:  helpers.GetEnv("HELM_DEPLOY_REPORT_PROVIDER", ""),
		gitlabURL:       helpers.FirstEnv("HELM_DEPLOY_GITLAB_URL", "CI_SERVER_URL"),
		gitlabToken:     helpers.FirstEnv("HELM_DEPLOY_GITLAB_TOKEN", "CI_JOB_TOKEN"),
		gitlabProjectID: helpers.FirstEnv("HELM_DEPLOY_GITLAB_PROJECT_ID", "CI_PROJECT_ID"),
		gitlabMergeIID:  helpers.GetEnvInt("HELM_DEPLOY_GITLAB_MR_IID", "CI_MERGE_REQUEST_IID"),
	}
}

func (f rootFlags) configOptions(opts Options) ([]app.ConfigOption, error) {
	options := []app.ConfigOption{
		app.WithTempDirBase(f.tempDir),
		app.WithHelmBinary(f.helmBinary),
		app.WithDebug(f.debug),
		app.WithVersion(opts.Version),
	}

	reportOption, err := f.reportOption()
	if err != nil {
		return nil, err
	}
	if reportOption != nil {
		options = append(options, reportOption)
	}

	return options, nil
}

func (f rootFlags) reportOption() (app.ConfigOption, error) {
	provider := strings.ToLower(strings.TrimSpace(f.reportProvider))
	switch provider {
	case "":
		return nil, nil
	case string(app.ReportProviderGitLab):
		return app.WithReportConfig(app.ReportConfig{
			Provider: app.ReportProviderGitLab,
			GitLab: app.GitLabReportConfig{
				BaseURL:         f.gitlabURL,
				Token:           f.gitlabToken,
				ProjectID:       f.gitlabProjectID,
				MergeRequestIID: f.gitlabMergeIID,
			},
		}), nil
	default:
		return nil, fmt.Errorf("unsupported report provider %q", f.reportProvider)
	}
}
