package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/cmd/helm-deploy/utils"
	"github.com/shini4i/helm-deploy/internal/executor"
	"github.com/shini4i/helm-deploy/internal/inputs"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/shini4i/helm-deploy/internal/planner"
	"github.com/shini4i/helm-deploy/internal/ports"
	"github.com/shini4i/helm-deploy/internal/registry"
	"github.com/shini4i/helm-deploy/internal/report"
	"github.com/shini4i/helm-deploy/internal/report/gitlab"
	"github.com/shini4i/helm-deploy/internal/repository"
	"github.com/shini4i/helm-deploy/internal/toolchain"
	"github.com/shini4i/helm-deploy/internal/values"
	"github.com/spf13/afero"
)

// Dependencies aggregates runtime collaborators required by App.
type Dependencies struct {
	FS                  afero.Fs
	CmdRunner           ports.CmdRunner
	Logger              *logging.Logger
	ECRClientFactory    registry.ClientFactory
	ReportPosterFactory ReportPosterFactory
}

// ReportPosterFactory builds a report poster based on the active configuration.
type ReportPosterFactory func(cfg Config) (report.Poster, error)

// App orchestrates a single deployment run.
type App struct {
	cfg           Config
	fs            afero.Fs
	cmdRunner     ports.CmdRunner
	logger        *logging.Logger
	ecrClients    registry.ClientFactory
	posterFactory ReportPosterFactory
}

// New constructs an App using the supplied configuration and dependencies.
func New(cfg Config, deps Dependencies) (*App, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger must be provided")
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.CmdRunner == nil {
		deps.CmdRunner = &utils.RealCmdRunner{}
	}
	if deps.ECRClientFactory == nil {
		deps.ECRClientFactory = registry.NewECRClient
	}
	if deps.ReportPosterFactory == nil {
		deps.ReportPosterFactory = defaultReportPosterFactory
	}

	return &App{
		cfg:           cfg,
		fs:            deps.FS,
		cmdRunner:     deps.CmdRunner,
		logger:        deps.Logger,
		ecrClients:    deps.ECRClientFactory,
		posterFactory: deps.ReportPosterFactory,
	}, nil
}

// Run normalizes the inputs, plans the helm invocations and executes them.
// The returned error carries the exit status, see models.ExitCode.
func (a *App) Run(ctx context.Context) (err error) {
	a.logger.Infof("===> Running helm-deploy version [%s]", cyan(a.cfg.Version))

	req, err := inputs.Normalize(a.cfg.Inputs)
	if err != nil {
		return err
	}

	a.logger.Infof("===> Deploying release [%s] to namespace [%s] with mode [%s]", cyan(req.Release), cyan(req.Namespace), cyan(req.Mode))

	var result models.ExecutionResult
	if a.reportEnabled() {
		defer func() {
			a.report(context.WithoutCancel(ctx), req, result, err)
		}()
	}

	result, err = a.deploy(ctx, req)
	if err != nil {
		return err
	}

	a.logger.Infof("%s helm %s of release [%s] finished in %s", green("✔"), req.Mode, cyan(req.Release), result.Elapsed)

	return nil
}

// deploy runs the probe, login, values, planning and execution stages for req.
func (a *App) deploy(ctx context.Context, req models.DeploymentRequest) (result models.ExecutionResult, err error) {
	prober := toolchain.Prober{Runner: a.cmdRunner, HelmBinary: a.cfg.HelmBinary, Log: a.logger}
	helmVersion := prober.Check(ctx, req.HelmVersion)

	login, err := a.registryLogin(ctx, req)
	if err != nil {
		return result, err
	}

	var sources []models.ValueSource
	if req.Mode.UsesChart() {
		resolver := values.Resolver{FS: a.fs, TempDirBase: a.cfg.TempDirBase, Log: a.logger}

		scope, resolveErr := resolver.Resolve(req.Values, req.ValuesFiles)
		if resolveErr != nil {
			return result, resolveErr
		}

		defer func() {
			if closeErr := scope.Close(); closeErr != nil {
				if err == nil {
					err = closeErr
					return
				}
				a.logger.Warningf("%s", yellow(closeErr.Error()))
			}
		}()

		sources = scope.Sources
	}

	plan, err := planner.Planner{
		HelmBinary:  a.cfg.HelmBinary,
		HelmVersion: helmVersion,
		Registrar:   repository.Registrar{HelmBinary: a.cfg.HelmBinary, Log: a.logger},
		Log:         a.logger,
	}.Plan(req, sources, login)
	if err != nil {
		return result, err
	}

	return executor.Executor{Runner: a.cmdRunner, Log: a.logger}.Execute(ctx, plan)
}

// registryLogin plans the ECR login step when requested. Uninstall never pulls a chart, so it never logs in.
func (a *App) registryLogin(ctx context.Context, req models.DeploymentRequest) (*models.Step, error) {
	if !req.ECRLogin {
		return nil, nil
	}
	if !req.Mode.UsesChart() {
		a.logger.Debugf("Skipping registry login for helm %s", req.Mode)
		return nil, nil
	}

	authenticator := registry.ECRAuthenticator{
		NewClient:  a.ecrClients,
		HelmBinary: a.cfg.HelmBinary,
		Log:        a.logger,
	}

	return authenticator.LoginStep(ctx, req.Chart)
}

func (a *App) reportEnabled() bool {
	return a.cfg.Report != nil && a.cfg.Report.Provider != ReportProviderNone
}

// report publishes the outcome of the run. Failures are only logged so they never change the exit status.
func (a *App) report(ctx context.Context, req models.DeploymentRequest, result models.ExecutionResult, runErr error) {
	poster, err := a.posterFactory(a.cfg)
	if err == nil && poster == nil {
		err = errors.New("report poster factory returned nil")
	}
	if err != nil {
		a.logger.Warningf("Unable to report deployment outcome: %s", yellow(err.Error()))
		return
	}

	reporter := report.Reporter{Poster: poster, Log: a.logger}
	if err := reporter.Report(ctx, req, result, runErr); err != nil {
		a.logger.Warningf("Unable to report deployment outcome: %s", yellow(err.Error()))
	}
}

func defaultReportPosterFactory(cfg Config) (report.Poster, error) {
	if cfg.Report == nil || cfg.Report.Provider == ReportProviderNone {
		return nil, fmt.Errorf("report factory requested with no report provider configured")
	}

	switch cfg.Report.Provider {
	case ReportProviderGitLab:
		return gitlab.NewPoster(gitlab.Config{
			BaseURL:         cfg.Report.GitLab.BaseURL,
			Token:           cfg.Report.GitLab.Token,
			ProjectID:       cfg.Report.GitLab.ProjectID,
			MergeRequestIID: cfg.Report.GitLab.MergeRequestIID,
		})
	default:
		return nil, fmt.Errorf("unsupported report provider %q", cfg.Report.Provider)
	}
}
