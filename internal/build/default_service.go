package build

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"git.home.luguber.info/inful/modelgen/internal/compiler"
	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/generator"
	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/metrics"
	"git.home.luguber.info/inful/modelgen/internal/observability"
	"git.home.luguber.info/inful/modelgen/internal/project"
	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

// ModelCompiler compiles the model directory in isolation from env.
type ModelCompiler interface {
	Compile(ctx context.Context, env *project.Environment, modelDir string) error
}

// GeneratorFactory builds the generator invoker for one run.
type GeneratorFactory func(env *project.Environment) (*generator.Invoker, error)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	gate             *toolchain.Gate
	compiler         ModelCompiler
	generatorFactory GeneratorFactory
	recorder         metrics.Recorder
	now              func() time.Time
}

// NewService creates a DefaultService with the default version gate, a
// `go build` compiler, and no generator factory.
func NewService() *DefaultService {
	return &DefaultService{
		gate:     toolchain.NewGate(toolchain.MinimumSupported),
		compiler: compiler.NewIsolated(&compiler.GoBuild{}),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		// generatorFactory must be set via WithGeneratorFactory
	}
}

// WithGate replaces the toolchain version gate.
func (s *DefaultService) WithGate(g *toolchain.Gate) *DefaultService {
	if g != nil {
		s.gate = g
	}
	return s
}

// WithCompiler replaces the isolated model compiler.
func (s *DefaultService) WithCompiler(c ModelCompiler) *DefaultService {
	if c != nil {
		s.compiler = c
	}
	return s
}

// WithGeneratorFactory sets how the generator invoker is created.
func (s *DefaultService) WithGeneratorFactory(f GeneratorFactory) *DefaultService {
	s.generatorFactory = f
	return s
}

// WithRecorder injects a metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

type step struct {
	name string
	to   State
	run  func(ctx context.Context) error
}

// Run executes the pipeline. The returned Result is never nil.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	result := &Result{
		RunID:     runIDFrom(ctx),
		State:     StateStart,
		StartTime: start,
	}
	ctx = observability.WithRunID(ctx, result.RunID)

	if err := validate(req); err != nil {
		return s.finish(ctx, result, req.Env, StepValidateRequest, err)
	}
	if s.generatorFactory == nil {
		return s.finish(ctx, result, req.Env, StepValidateRequest, mgerrors.InternalError("no generator configured", nil))
	}

	var invoker *generator.Invoker
	steps := []step{
		{StepCheckVersion, StateVersionChecked, func(ctx context.Context) error {
			return s.checkVersion(ctx, req.ToolchainVersion)
		}},
		{StepCompileModel, StateModelCompiled, func(ctx context.Context) error {
			if err := s.compiler.Compile(ctx, req.Env, req.ModelSourceDir); err != nil {
				return mgerrors.CompileFailed(req.ModelSourceDir, err)
			}
			return nil
		}},
		{StepRegisterGeneratedRoot, StateGeneratedRootRegistered, func(ctx context.Context) error {
			s.register(ctx, req.Env, req.GeneratorTargetDir)
			return nil
		}},
		{StepGenerate, StateGenerated, func(ctx context.Context) error {
			inv, err := s.generatorFactory(req.Env)
			if err != nil {
				return mgerrors.ConfigInvalid("generator.command", err)
			}
			invoker = inv.WithObserver(recorderObserver{s.recorder})
			err = invoker.GenerateAll(ctx, req.ModelClasses, req.GeneratorTargetDir)
			for _, w := range invoker.Warnings() {
				result.Warnings = append(result.Warnings, w.Message)
			}
			result.Invocations = invoker.Invocations()
			return classifyGenerateError(err, req.GeneratorTargetDir)
		}},
		{StepRegisterModelRoot, StateModelRootRegistered, func(ctx context.Context) error {
			s.register(ctx, req.Env, req.ModelSourceDir)
			return nil
		}},
	}

	for _, st := range steps {
		if err := s.runStep(ctx, result, st); err != nil {
			return s.finish(ctx, result, req.Env, st.name, err)
		}
	}
	result.Transitions = append(result.Transitions, Transition{
		From: result.State, To: StateDone, Step: StepFinish,
	})
	result.State = StateDone
	return s.finish(ctx, result, req.Env, "", nil)
}

func (s *DefaultService) runStep(ctx context.Context, result *Result, st step) error {
	ctx = observability.WithStage(ctx, st.name)
	if err := ctx.Err(); err != nil {
		s.recorder.IncStageResult(st.name, metrics.ResultCanceled)
		return mgerrors.Canceled(st.name, err)
	}

	stageStart := s.now()
	observability.DebugContext(ctx, "Entering pipeline step", logfields.State(string(result.State)))
	err := st.run(ctx)
	d := s.now().Sub(stageStart)
	s.recorder.ObserveStageDuration(st.name, d)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			s.recorder.IncStageResult(st.name, metrics.ResultCanceled)
			return mgerrors.Canceled(st.name, ctxErr)
		}
		s.recorder.IncStageResult(st.name, metrics.ResultFatal)
		return err
	}

	label := metrics.ResultSuccess
	if st.name == StepGenerate && len(result.Warnings) > 0 {
		label = metrics.ResultWarning
	}
	s.recorder.IncStageResult(st.name, label)
	result.Transitions = append(result.Transitions, Transition{
		From: result.State, To: st.to, Step: st.name, Duration: d,
	})
	result.State = st.to
	return nil
}

func (s *DefaultService) checkVersion(ctx context.Context, raw string) error {
	err := s.gate.Check(ctx, raw)
	if err == nil {
		return nil
	}
	var verr *toolchain.VersionError
	if errors.As(err, &verr) {
		return mgerrors.VersionTooOld(verr.Required.String(), verr.Actual, err)
	}
	return mgerrors.VersionUnparsable(raw, err)
}

func (s *DefaultService) register(ctx context.Context, env *project.Environment, dir string) {
	env.AddCompileSourceRoot(dir)
	s.recorder.AddSourceRoots(1)
	observability.InfoContext(ctx, "Added compile source root", logfields.Path(dir))
}

func classifyGenerateError(err error, outputDir string) error {
	if err == nil {
		return nil
	}
	var gerr *generator.GenerationError
	var perr *fs.PathError
	switch {
	case errors.As(err, &gerr):
		return mgerrors.GenerationFailed(gerr.ClassName, err).
			WithContext("exit_status", gerr.ExitStatus)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &perr):
		return mgerrors.WriteFailed(outputDir, err)
	default:
		return mgerrors.StageFailed(StepGenerate, err)
	}
}

// finish stamps timing, status and metrics on result. A non-nil err moves
// the run to Failed.
func (s *DefaultService) finish(ctx context.Context, result *Result, env *project.Environment, failedStep string, err error) (*Result, error) {
	if env != nil {
		result.SourceRoots = env.CompileSourceRoots()
	}
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	var outcome metrics.BuildOutcomeLabel
	switch {
	case err != nil:
		result.Transitions = append(result.Transitions, Transition{
			From: result.State, To: StateFailed, Step: failedStep,
		})
		result.State = StateFailed
		result.FailedStep = failedStep
		result.Status = StatusFailed
		outcome = metrics.BuildOutcomeFailed
		if mgerrors.IsCategory(err, mgerrors.CategoryCanceled) {
			result.Status = StatusCanceled
			outcome = metrics.BuildOutcomeCanceled
		}
		observability.ErrorContext(ctx, "Model generation pipeline failed",
			logfields.Stage(failedStep), logfields.Error(err))
	case len(result.Warnings) > 0:
		result.Status = StatusWarning
		outcome = metrics.BuildOutcomeWarning
	default:
		result.Status = StatusSuccess
		outcome = metrics.BuildOutcomeSuccess
	}

	s.recorder.IncBuildOutcome(outcome)
	s.recorder.ObserveBuildDuration(result.Duration)
	if err == nil {
		observability.InfoContext(ctx, "Model generation pipeline completed",
			logfields.State(string(result.State)),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
	}
	return result, err
}

func validate(req Request) error {
	if req.Env == nil {
		return mgerrors.Wrap(ErrNoEnvironment, mgerrors.CategoryValidation, mgerrors.SeverityFatal, "invalid build request")
	}
	if req.ModelSourceDir == "" {
		return mgerrors.ValidationFailed("model.source_directory", "must not be empty")
	}
	if req.GeneratorTargetDir == "" {
		return mgerrors.ValidationFailed("generator.target_directory", "must not be empty")
	}
	return nil
}

func runIDFrom(ctx context.Context) string {
	if lc := observability.GetContext(ctx); lc.RunID != "" {
		return lc.RunID
	}
	return observability.NewRunID()
}

type recorderObserver struct{ r metrics.Recorder }

func (o recorderObserver) OnInvocation(inv generator.Invocation) {
	o.r.ObserveGeneratorInvocation(inv.ClassName, inv.Duration, inv.ExitCode == 0)
}
