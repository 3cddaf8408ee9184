package models

import (
	"strings"
	"time"
)

// ValueSourceKind tells where a set of values came from.
type ValueSourceKind int

const (
	ValueSourceInline ValueSourceKind = iota
	ValueSourceFile
)

func (k ValueSourceKind) String() string {
	switch k {
	case ValueSourceInline:
		return "inline"
	case ValueSourceFile:
		return "file"
	default:
		return "unknown"
	}
}

// ValueSource is one values file handed to helm. Later sources override earlier ones.
type ValueSource struct {
	Kind ValueSourceKind
	Path string
}

// StepKind identifies the purpose of a planned invocation.
type StepKind string

const (
	StepRegistryLogin  StepKind = "registry-login"
	StepRepositoryAdd  StepKind = "repository-add"
	StepChartOperation StepKind = "chart-operation"
)

// Step is a single external command invocation.
type Step struct {
	Kind    StepKind
	Target  string
	Command string
	Args    []string
	// Stdin is fed to the process and never logged.
	Stdin string
}

// String renders the command line. Stdin is not part of it.
func (s Step) String() string {
	return strings.Join(append([]string{s.Command}, s.Args...), " ")
}

// DeploymentPlan is the ordered set of invocations for one deployment.
type DeploymentPlan struct {
	Mode          Mode
	Release       string
	RegistryLogin *Step
	RepositoryAdd *Step
	Operation     Step
}

// Steps returns the invocations in execution order. The chart operation is always last.
func (p DeploymentPlan) Steps() []Step {
	steps := make([]Step, 0, 3)
	if p.RegistryLogin != nil {
		steps = append(steps, *p.RegistryLogin)
	}
	if p.RepositoryAdd != nil {
		steps = append(steps, *p.RepositoryAdd)
	}
	return append(steps, p.Operation)
}

// ExecutionResult describes the last step that ran.
type ExecutionResult struct {
	Step     StepKind
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}
