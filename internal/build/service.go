package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/modelgen/internal/generator"
	"git.home.luguber.info/inful/modelgen/internal/project"
)

// Service is the canonical interface for executing a generation run.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs of one run.
type Request struct {
	// Env is the host build, borrowed for the duration of the run.
	Env *project.Environment

	// ToolchainVersion is the host build tool's version string.
	ToolchainVersion string

	// ModelSourceDir holds the hand-written model sources.
	ModelSourceDir string

	// GeneratorTargetDir receives the generated sources.
	GeneratorTargetDir string

	// ModelClasses are the models to generate from, in order.
	ModelClasses []string
}

// Result contains the outcome of a run.
type Result struct {
	RunID  string
	Status Status

	// State is the final state; Done or Failed once Run returns.
	State State

	// FailedStep names the step that moved the run to Failed.
	FailedStep string

	Transitions []Transition
	Warnings    []string
	Invocations []generator.Invocation

	// SourceRoots is the host's compile source root list after the run.
	SourceRoots []string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status is the coarse outcome of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// IsSuccess returns true if the run reached Done.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning
}
