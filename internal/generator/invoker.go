package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/observability"
)

// GenerationError reports a generator run that exited non-zero. A run that
// never produced an exit status (not started, killed by a signal) has
// ExitStatus -1 and the cause in Err.
type GenerationError struct {
	ClassName  string
	ExitStatus int
	Stderr     string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generator failed for model class %s: %v", e.ClassName, e.Err)
	}
	msg := fmt.Sprintf("generator failed for model class %s with exit status %d", e.ClassName, e.ExitStatus)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ConfigurationWarning is a non-fatal problem found while generating.
type ConfigurationWarning struct {
	Message string
}

// Invocation records one generator run.
type Invocation struct {
	ClassName   string        `json:"class_name"`
	OutputDir   string        `json:"output_dir"`
	CommandLine string        `json:"command_line"`
	ExitCode    int           `json:"exit_code"`
	Duration    time.Duration `json:"duration_ns"`
}

// Observer is notified after every generator run.
type Observer interface {
	OnInvocation(inv Invocation)
}

// Invoker runs the generator for each configured model class.
type Invoker struct {
	process  Process
	render   func(args []string) string
	observer Observer

	invocations []Invocation
	warnings    []ConfigurationWarning
}

// NewInvoker returns an Invoker backed by p. When p is a *Command the
// recorded command lines include the generator executable.
func NewInvoker(p Process) *Invoker {
	render := CommandLine
	if c, ok := p.(*Command); ok {
		render = func(args []string) string { return CommandLine(c.Argv(args)) }
	}
	return &Invoker{process: p, render: render}
}

// WithObserver registers o to be told about each invocation.
func (i *Invoker) WithObserver(o Observer) *Invoker {
	i.observer = o
	return i
}

// GenerateAll invokes the generator with [className, outputDir] for each
// class, in order, one at a time, and stops at the first failure. An empty
// class list is a configuration warning, not an error.
func (i *Invoker) GenerateAll(ctx context.Context, classes []string, outputDir string) error {
	if len(classes) == 0 {
		msg := mgerrors.NoModelClasses().Message
		observability.ErrorContext(ctx, msg)
		i.warnings = append(i.warnings, ConfigurationWarning{Message: msg})
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("create generator output directory: %w", err)
	}

	for _, class := range classes {
		if err := ctx.Err(); err != nil {
			return err
		}
		args := []string{class, outputDir}
		line := i.render(args)
		observability.InfoContext(ctx, "Generating model API",
			logfields.ModelClass(class), logfields.Path(outputDir), logfields.Command(line))

		res, err := i.process.Invoke(ctx, args)
		inv := Invocation{
			ClassName:   class,
			OutputDir:   outputDir,
			CommandLine: line,
			ExitCode:    res.Code,
			Duration:    res.Duration,
		}
		if err != nil {
			inv.ExitCode = -1
			i.record(inv)
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return err
			}
			observability.ErrorContext(ctx, "Generator could not run",
				logfields.ModelClass(class), logfields.Error(err))
			return &GenerationError{ClassName: class, ExitStatus: -1, Stderr: res.Stderr, Err: err}
		}
		i.record(inv)

		if res.Code != 0 {
			observability.ErrorContext(ctx, "Generator exited with failure",
				logfields.ModelClass(class), logfields.ExitCode(res.Code),
				slogOutput(strings.TrimSpace(res.Stderr)))
			return &GenerationError{ClassName: class, ExitStatus: res.Code, Stderr: res.Stderr}
		}
	}
	return nil
}

func (i *Invoker) record(inv Invocation) {
	i.invocations = append(i.invocations, inv)
	if i.observer != nil {
		i.observer.OnInvocation(inv)
	}
}

// Invocations returns the generator runs attempted so far.
func (i *Invoker) Invocations() []Invocation {
	return append([]Invocation(nil), i.invocations...)
}

// Warnings returns the configuration warnings raised so far.
func (i *Invoker) Warnings() []ConfigurationWarning {
	return append([]ConfigurationWarning(nil), i.warnings...)
}

func slogOutput(s string) slog.Attr { return slog.String("output", s) }
