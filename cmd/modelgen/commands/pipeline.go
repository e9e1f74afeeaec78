package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/modelgen/internal/build"
	"git.home.luguber.info/inful/modelgen/internal/compiler"
	"git.home.luguber.info/inful/modelgen/internal/config"
	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/generator"
	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/metrics"
	"git.home.luguber.info/inful/modelgen/internal/observability"
	"git.home.luguber.info/inful/modelgen/internal/project"
	"git.home.luguber.info/inful/modelgen/internal/report"
	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

// runner executes the pipeline for a resolved descriptor and writes the
// run's outputs.
type runner struct {
	cfg      *config.Config
	svc      *build.DefaultService
	registry *prom.Registry
}

// newRunner wires the pipeline. Metrics are recorded into registry when it
// is non-nil, or into a fresh one when output.metrics_file is set.
func newRunner(cfg *config.Config, registry *prom.Registry) (*runner, error) {
	minimum, err := cfg.MinimumVersion()
	if err != nil {
		return nil, mgerrors.ValidationFailed("toolchain.minimum", err.Error())
	}

	var tc compiler.Toolchain
	switch cfg.Compiler.Mode {
	case config.CompilerModeTypeCheck:
		tc = compiler.TypeCheck{}
	default:
		tc = &compiler.GoBuild{Command: cfg.Compiler.Command}
	}

	if registry == nil && cfg.Output.MetricsFile != "" {
		registry = prom.NewRegistry()
	}
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if registry != nil {
		rec = metrics.NewPrometheusRecorder(registry)
	}

	genCommand := cfg.Generator.Command
	svc := build.NewService().
		WithGate(toolchain.NewGate(minimum)).
		WithCompiler(compiler.NewIsolated(tc,
			compiler.WithOutputDir(cfg.Compiler.OutputDirectory),
			compiler.WithFlags(cfg.Compiler.Flags...))).
		WithRecorder(rec).
		WithGeneratorFactory(func(env *project.Environment) (*generator.Invoker, error) {
			cmd, err := generator.NewCommand(genCommand, env.BaseDir, env.Session.Clone().Env)
			if err != nil {
				return nil, err
			}
			return generator.NewInvoker(cmd), nil
		})

	return &runner{cfg: cfg, svc: svc, registry: registry}, nil
}

// runOnce runs the pipeline against a fresh environment. On success the
// source roots manifest is written; the report and metrics are written
// whatever the outcome.
func (r *runner) runOnce(ctx context.Context, version string) (*build.Result, *report.Report, error) {
	runID := observability.NewRunID()
	ctx = observability.WithRunID(ctx, runID)
	env := r.cfg.Environment(project.Session{RunID: runID})

	res, err := r.svc.Run(ctx, build.Request{
		Env:                env,
		ToolchainVersion:   version,
		ModelSourceDir:     r.cfg.Model.SourceDirectory,
		GeneratorTargetDir: r.cfg.Generator.TargetDirectory,
		ModelClasses:       r.cfg.Model.Classes,
	})

	if err == nil {
		if werr := project.WriteManifest(r.cfg.Output.RootsManifest, env); werr != nil {
			err = mgerrors.WriteFailed(r.cfg.Output.RootsManifest, werr)
		} else {
			observability.InfoContext(ctx, "Wrote source roots manifest",
				logfields.Path(r.cfg.Output.RootsManifest), logfields.Roots(env.CompileSourceRoots()))
		}
	}

	rep := report.New(res, version, err)
	if rev, rerr := report.ModelRevision(r.cfg.Model.SourceDirectory); rerr != nil {
		observability.DebugContext(ctx, "Model revision unavailable", logfields.Error(rerr))
	} else {
		rep.WithRevision(rev)
	}
	if r.cfg.Output.ReportFile != "" {
		if perr := rep.Persist(r.cfg.Output.ReportFile); perr != nil {
			observability.WarnContext(ctx, "Failed to write run report",
				logfields.Path(r.cfg.Output.ReportFile), logfields.Error(perr))
		}
	}
	if r.cfg.Output.MetricsFile != "" && r.registry != nil {
		if merr := metrics.WriteTextfile(r.cfg.Output.MetricsFile, r.registry); merr != nil {
			slog.Warn("Failed to write metrics textfile",
				logfields.Path(r.cfg.Output.MetricsFile), logfields.Error(merr))
		}
	}
	return res, rep, err
}
