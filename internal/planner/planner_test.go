package planner

import (
	"testing"
	"time"

	"github.com/blang/semver"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/shini4i/helm-deploy/internal/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() models.DeploymentRequest {
	return models.DeploymentRequest{
		Release:     "podinfo",
		Namespace:   "apps",
		Chart:       "mychart",
		Mode:        models.ModeUpgrade,
		Atomic:      true,
		HelmVersion: models.DefaultHelmVersion,
	}
}

func newPlanner() Planner {
	return Planner{Log: logging.MustGetLogger("test")}
}

func TestPlanUpgradeWithVersionPin(t *testing.T) {
	req := baseRequest()
	req.ChartVersion = "1.2.3"

	plan, err := newPlanner().Plan(req, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ModeUpgrade, plan.Mode)
	assert.Nil(t, plan.RepositoryAdd)
	assert.Nil(t, plan.RegistryLogin)
	assert.Equal(t, models.StepChartOperation, plan.Operation.Kind)
	assert.Equal(t, "helm", plan.Operation.Command)
	assert.Equal(t, []string{
		"upgrade", "--install", "podinfo",
		"--namespace", "apps",
		"mychart", "--version", "1.2.3",
		"--atomic",
	}, plan.Operation.Args)
}

func TestPlanFullArgumentOrder(t *testing.T) {
	req := baseRequest()
	req.Mode = models.ModeInstall
	req.ChartVersion = "6.5.4"
	req.DryRun = true
	req.Timeout = 5 * time.Minute
	sources := values.Merge(
		&models.ValueSource{Kind: models.ValueSourceInline, Path: "/tmp/helm-deploy-1/values.yaml"},
		[]string{"base.yaml", "prod.yaml"},
	)

	plan, err := newPlanner().Plan(req, sources, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"install", "podinfo",
		"--namespace", "apps",
		"mychart", "--version", "6.5.4",
		"--values", "/tmp/helm-deploy-1/values.yaml",
		"--values", "base.yaml",
		"--values", "prod.yaml",
		"--dry-run",
		"--atomic",
		"--timeout", "5m0s",
	}, plan.Operation.Args)
}

func TestPlanPreservesValueSourceOrder(t *testing.T) {
	files := []string{"z.yaml", "a.yaml", "z.yaml", "m.yaml"}
	sources := values.Merge(nil, files)

	plan, err := newPlanner().Plan(baseRequest(), sources, nil)
	require.NoError(t, err)

	var rendered []string
	args := plan.Operation.Args
	for i := 0; i < len(args); i++ {
		if args[i] == "--values" {
			rendered = append(rendered, args[i+1])
			i++
		}
	}
	assert.Equal(t, files, rendered)
	assert.Equal(t, ValuesArgs(sources), []string{
		"--values", "z.yaml", "--values", "a.yaml", "--values", "z.yaml", "--values", "m.yaml",
	})
}

func TestPlanUninstallIgnoresChartInputs(t *testing.T) {
	req := baseRequest()
	req.Mode = models.ModeUninstall
	req.ChartVersion = "1.2.3"
	req.Values = "a: 1\n"
	req.ValuesFiles = []string{"a.yaml"}
	req.Repository = &models.RepositoryBinding{Name: "example", URL: "https://charts.example.com"}
	req.DryRun = true
	req.Timeout = time.Minute

	plan, err := newPlanner().Plan(req, values.Merge(nil, req.ValuesFiles), nil)
	require.NoError(t, err)

	assert.Nil(t, plan.RepositoryAdd)
	assert.Equal(t, []string{
		"uninstall", "podinfo",
		"--namespace", "apps",
		"--dry-run",
		"--timeout", "1m0s",
	}, plan.Operation.Args)
	assert.NotContains(t, plan.Operation.Args, "--atomic")
	assert.NotContains(t, plan.Operation.Args, "--version")
	assert.NotContains(t, plan.Operation.Args, "--values")
}

func TestPlanTemplate(t *testing.T) {
	req := baseRequest()
	req.Mode = models.ModeTemplate
	req.DryRun = true
	req.Timeout = time.Minute

	plan, err := newPlanner().Plan(req, values.Merge(nil, []string{"a.yaml"}), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"template", "podinfo",
		"--namespace", "apps",
		"mychart",
		"--values", "a.yaml",
	}, plan.Operation.Args)
}

func TestPlanOmitsDisabledFlags(t *testing.T) {
	req := baseRequest()
	req.Atomic = false

	plan, err := newPlanner().Plan(req, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"upgrade", "--install", "podinfo", "--namespace", "apps", "mychart"}, plan.Operation.Args)
}

func TestPlanWithRepositoryAndLogin(t *testing.T) {
	req := baseRequest()
	req.Repository = &models.RepositoryBinding{Name: "example", URL: "https://charts.example.com"}
	req.Chart = "example/app"
	login := &models.Step{Kind: models.StepRegistryLogin, Command: "helm", Args: []string{"registry", "login"}}

	plan, err := newPlanner().Plan(req, nil, login)
	require.NoError(t, err)

	steps := plan.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, models.StepRegistryLogin, steps[0].Kind)
	assert.Equal(t, models.StepRepositoryAdd, steps[1].Kind)
	assert.Equal(t, []string{"repo", "add", "example", "https://charts.example.com"}, steps[1].Args)
	assert.Equal(t, models.StepChartOperation, steps[2].Kind)
	assert.Equal(t, "example/app", steps[2].Args[5])
}

func TestPlanHelm4UsesRollbackOnFailure(t *testing.T) {
	p := newPlanner()
	p.HelmVersion = semver.MustParse("4.0.1")

	plan, err := p.Plan(baseRequest(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, plan.Operation.Args, "--rollback-on-failure")
	assert.NotContains(t, plan.Operation.Args, "--atomic")
}

func TestPlanUsesConfiguredBinary(t *testing.T) {
	p := newPlanner()
	p.HelmBinary = "/usr/local/bin/helm"

	plan, err := p.Plan(baseRequest(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/helm", plan.Operation.Command)
}

func TestPlanRejectsIncompleteRequest(t *testing.T) {
	_, err := newPlanner().Plan(models.DeploymentRequest{Mode: models.ModeUpgrade}, nil, nil)
	assert.Error(t, err)

	req := baseRequest()
	req.Chart = ""
	_, err = newPlanner().Plan(req, nil, nil)
	assert.Error(t, err)

	req = baseRequest()
	req.Mode = "rollback"
	_, err = newPlanner().Plan(req, nil, nil)
	assert.Error(t, err)
}
