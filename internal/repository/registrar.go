package repository

import (
	"net/url"

	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
)

const (
	InputRepo     = "repo"
	InputRepoName = "repo-name"
)

// NewBinding validates a repository name/URL pair.
// Both empty yields nil; exactly one empty is a ValidationError.
func NewBinding(name, repoURL string) (*models.RepositoryBinding, error) {
	switch {
	case name == "" && repoURL == "":
		return nil, nil
	case repoURL == "":
		return nil, &models.ValidationError{Input: InputRepo, Reason: "must be set together with repo-name"}
	case name == "":
		return nil, &models.ValidationError{Input: InputRepoName, Reason: "must be set together with repo"}
	}

	parsed, err := url.Parse(repoURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &models.ValidationError{Input: InputRepo, Reason: "must be an absolute URL, got " + repoURL}
	}

	return &models.RepositoryBinding{Name: name, URL: repoURL}, nil
}

// Registrar turns a repository binding into the step that registers it with helm.
type Registrar struct {
	HelmBinary string
	Log        *logging.Logger
}

// Step returns the repository-add step for binding, or nil when there is nothing to register.
// An existing repository with a different URL is left to helm to reject.
func (r Registrar) Step(binding *models.RepositoryBinding) *models.Step {
	if binding == nil {
		if r.Log != nil {
			r.Log.Debug("No chart repository to register")
		}
		return nil
	}

	if r.Log != nil {
		r.Log.Debugf("Registering chart repository [%s] at %s", binding.Name, binding.URL)
	}

	return &models.Step{
		Kind:    models.StepRepositoryAdd,
		Target:  "repository " + binding.Name,
		Command: r.helm(),
		Args:    []string{"repo", "add", binding.Name, binding.URL},
	}
}

func (r Registrar) helm() string {
	if r.HelmBinary == "" {
		return "helm"
	}
	return r.HelmBinary
}
