package compiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/observability"
	"git.home.luguber.info/inful/modelgen/internal/project"
)

// Toolchain is the external "compile these roots" capability.
type Toolchain interface {
	Compile(ctx context.Context, req Request) error
}

// CompileError reports a failed isolated compile.
type CompileError struct {
	SourceRoot string
	Diagnostic string
	Err        error
}

func (e *CompileError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("compile %s: %s", e.SourceRoot, e.Diagnostic)
	}
	return fmt.Sprintf("compile %s: %v", e.SourceRoot, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Isolated compiles the model directory through a Toolchain.
type Isolated struct {
	toolchain Toolchain
	opts      []Option
}

// NewIsolated returns an Isolated compiler using tc. Options are applied to
// every request it builds.
func NewIsolated(tc Toolchain, opts ...Option) *Isolated {
	return &Isolated{toolchain: tc, opts: opts}
}

// Compile runs an isolated compile of modelDir. env is only read.
func (c *Isolated) Compile(ctx context.Context, env *project.Environment, modelDir string) error {
	req := NewRequest(env, modelDir, c.opts...)
	observability.InfoContext(ctx, "Compiling model sources",
		logfields.Roots(req.SourceRoots), logfields.Path(req.OutputDir))

	start := time.Now()
	if err := c.toolchain.Compile(ctx, req); err != nil {
		ce := &CompileError{SourceRoot: modelDir, Err: err}
		var diag *DiagnosticError
		if errors.As(err, &diag) {
			ce.Diagnostic = diag.Output
		}
		observability.ErrorContext(ctx, "Model compile failed",
			logfields.Path(modelDir), logfields.Error(err))
		return ce
	}
	observability.DebugContext(ctx, "Model sources compiled",
		logfields.Path(modelDir),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}
