package planner

import (
	"errors"
	"fmt"

	"github.com/blang/semver"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/shini4i/helm-deploy/internal/repository"
)

// Helm4 renamed --atomic to --rollback-on-failure.
var Helm4 = semver.MustParse("4.0.0-0")

const (
	flagNamespace         = "--namespace"
	flagVersion           = "--version"
	flagValues            = "--values"
	flagDryRun            = "--dry-run"
	flagAtomic            = "--atomic"
	flagRollbackOnFailure = "--rollback-on-failure"
	flagTimeout           = "--timeout"
	flagInstall           = "--install"
)

// Planner builds the ordered helm invocations for a deployment request.
type Planner struct {
	HelmBinary string
	// HelmVersion is the version of the helm binary on PATH. The zero value means unknown and selects helm 3 flags.
	HelmVersion semver.Version
	Registrar   repository.Registrar
	Log         *logging.Logger
}

// Plan produces the DeploymentPlan for req. sources must already be ordered, see values.Merge.
// login, when not nil, is run before anything else.
func (p Planner) Plan(req models.DeploymentRequest, sources []models.ValueSource, login *models.Step) (models.DeploymentPlan, error) {
	if req.Release == "" || req.Namespace == "" {
		return models.DeploymentPlan{}, errors.New("release and namespace must be set")
	}

	plan := models.DeploymentPlan{
		Mode:          req.Mode,
		Release:       req.Release,
		RegistryLogin: login,
	}

	if req.Mode.UsesChart() {
		plan.RepositoryAdd = p.Registrar.Step(req.Repository)
	}

	args, err := p.operationArgs(req, sources)
	if err != nil {
		return models.DeploymentPlan{}, err
	}

	plan.Operation = models.Step{
		Kind:    models.StepChartOperation,
		Target:  "release " + req.Release,
		Command: p.helm(),
		Args:    args,
	}

	if p.Log != nil {
		for i, source := range sources {
			p.Log.Debugf("Values source %d (%s): %s", i+1, source.Kind, source.Path)
		}
		for _, step := range plan.Steps() {
			p.Log.Debugf("Planned %s step: %s", step.Kind, step)
		}
	}

	return plan, nil
}

func (p Planner) operationArgs(req models.DeploymentRequest, sources []models.ValueSource) ([]string, error) {
	var args []string

	switch req.Mode {
	case models.ModeInstall:
		args = []string{"install"}
	case models.ModeUpgrade:
		args = []string{"upgrade", flagInstall}
	case models.ModeTemplate:
		args = []string{"template"}
	case models.ModeUninstall:
		args = []string{"uninstall"}
	default:
		return nil, fmt.Errorf("unsupported mode %q", req.Mode)
	}

	args = append(args, req.Release, flagNamespace, req.Namespace)

	if req.Mode.UsesChart() {
		if req.Chart == "" {
			return nil, fmt.Errorf("mode %s requires a chart", req.Mode)
		}
		args = append(args, req.Chart)
		if req.ChartVersion != "" {
			args = append(args, flagVersion, req.ChartVersion)
		}
		args = append(args, ValuesArgs(sources)...)
	} else if p.Log != nil && (req.ChartVersion != "" || len(sources) > 0 || req.HasInlineValues() || len(req.ValuesFiles) > 0) {
		p.Log.Debugf("Ignoring chart version and values for %s", req.Mode)
	}

	if !req.Mode.ChangesCluster() {
		return args, nil
	}

	if req.DryRun {
		args = append(args, flagDryRun)
	}

	if req.Atomic && req.Mode != models.ModeUninstall {
		args = append(args, p.atomicFlag())
	}

	if req.Timeout > 0 {
		args = append(args, flagTimeout, req.Timeout.String())
	}

	return args, nil
}

// ValuesArgs renders value sources as repeated --values arguments, preserving their order.
func ValuesArgs(sources []models.ValueSource) []string {
	args := make([]string, 0, 2*len(sources))
	for _, source := range sources {
		args = append(args, flagValues, source.Path)
	}
	return args
}

func (p Planner) atomicFlag() string {
	if p.HelmVersion.GTE(Helm4) {
		return flagRollbackOnFailure
	}
	return flagAtomic
}

func (p Planner) helm() string {
	if p.HelmBinary == "" {
		return "helm"
	}
	return p.HelmBinary
}
