package build

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/modelgen/internal/compiler"
	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/generator"
	"git.home.luguber.info/inful/modelgen/internal/metrics"
	"git.home.luguber.info/inful/modelgen/internal/observability"
	"git.home.luguber.info/inful/modelgen/internal/project"
	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

type fakeToolchain struct {
	requests []compiler.Request
	err      error
}

func (f *fakeToolchain) Compile(_ context.Context, req compiler.Request) error {
	f.requests = append(f.requests, req)
	return f.err
}

type fakeProcess struct {
	calls [][]string
	codes map[string]int
}

func (f *fakeProcess) Invoke(_ context.Context, args []string) (generator.ExitResult, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	code := f.codes[args[0]]
	res := generator.ExitResult{Code: code}
	if code != 0 {
		res.Stderr = "generator rejected " + args[0]
	}
	return res, nil
}

type fixture struct {
	env      *project.Environment
	tc       *fakeToolchain
	proc     *fakeProcess
	svc      *DefaultService
	req      Request
	genDir   string
	modelDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		env:      project.NewEnvironment(base, filepath.Join(base, "build"), project.Session{Env: []string{}}),
		tc:       &fakeToolchain{},
		proc:     &fakeProcess{},
		genDir:   filepath.Join(base, "gen"),
		modelDir: filepath.Join(base, "models"),
	}
	f.svc = NewService().
		WithCompiler(compiler.NewIsolated(f.tc)).
		WithGeneratorFactory(func(*project.Environment) (*generator.Invoker, error) {
			return generator.NewInvoker(f.proc), nil
		})
	f.req = Request{
		Env:                f.env,
		ToolchainVersion:   "3.5.0",
		ModelSourceDir:     f.modelDir,
		GeneratorTargetDir: f.genDir,
		ModelClasses:       []string{"Model"},
	}
	return f
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Run(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.FailedStep)
	assert.Equal(t, []string{f.genDir, f.modelDir}, f.env.CompileSourceRoots())
	assert.Equal(t, f.env.CompileSourceRoots(), res.SourceRoots)

	require.Len(t, f.proc.calls, 1)
	assert.Equal(t, []string{"Model", f.genDir}, f.proc.calls[0])

	require.Len(t, f.tc.requests, 1)
	assert.Equal(t, []string{f.modelDir}, f.tc.requests[0].SourceRoots)

	var states []State
	for _, tr := range res.Transitions {
		states = append(states, tr.To)
	}
	assert.Equal(t, []State{
		StateVersionChecked, StateModelCompiled, StateGeneratedRootRegistered,
		StateGenerated, StateModelRootRegistered, StateDone,
	}, states)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_CompileSeesOnlyModelDirEvenWithExistingRoots(t *testing.T) {
	f := newFixture(t)
	f.env.AddCompileSourceRoot("src/main/go")

	_, err := f.svc.Run(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, []string{f.modelDir}, f.tc.requests[0].SourceRoots)
	assert.Equal(t, []string{"src/main/go", f.genDir, f.modelDir}, f.env.CompileSourceRoots())
}

func TestRun_VersionTooOldStopsEverything(t *testing.T) {
	f := newFixture(t)
	f.req.ToolchainVersion = "3.0.0"

	res, err := f.svc.Run(context.Background(), f.req)
	require.Error(t, err)

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StepCheckVersion, res.FailedStep)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, f.tc.requests)
	assert.Empty(t, f.proc.calls)
	assert.Empty(t, f.env.CompileSourceRoots())

	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryToolchain))
	var verr *toolchain.VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "3.0.0", verr.Actual)
	assert.Contains(t, err.Error(), "3.3.9")
}

func TestRun_UnparsableVersion(t *testing.T) {
	f := newFixture(t)
	f.req.ToolchainVersion = "3.x.1"

	res, err := f.svc.Run(context.Background(), f.req)
	require.Error(t, err)

	assert.Equal(t, StepCheckVersion, res.FailedStep)
	var perr *toolchain.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, f.proc.calls)
}

func TestRun_CustomGateThreshold(t *testing.T) {
	f := newFixture(t)
	f.svc.WithGate(toolchain.NewGate(toolchain.MustParse("1.20.0")))
	f.req.ToolchainVersion = "1.24.11"

	res, err := f.svc.Run(context.Background(), f.req)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
}

func TestRun_CompileFailure(t *testing.T) {
	f := newFixture(t)
	f.tc.err = &compiler.DiagnosticError{Output: "model.go:1: syntax error", Err: errors.New("exit status 1")}

	res, err := f.svc.Run(context.Background(), f.req)
	require.Error(t, err)

	assert.Equal(t, StepCompileModel, res.FailedStep)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryCompile))
	var ce *compiler.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, f.modelDir, ce.SourceRoot)
	assert.Empty(t, f.proc.calls)
	assert.Empty(t, f.env.CompileSourceRoots())
}

func TestRun_GenerationFailureKeepsGeneratedRoot(t *testing.T) {
	f := newFixture(t)
	f.proc.codes = map[string]int{"Order": 4}
	f.req.ModelClasses = []string{"Customer", "Order", "Invoice"}

	res, err := f.svc.Run(context.Background(), f.req)
	require.Error(t, err)

	assert.Equal(t, StepGenerate, res.FailedStep)
	assert.Equal(t, StateFailed, res.State)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryGeneration))

	var ge *generator.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Order", ge.ClassName)
	assert.Equal(t, 4, ge.ExitStatus)

	assert.Len(t, f.proc.calls, 2)
	assert.Len(t, res.Invocations, 2)
	// no rollback: the generated root stays registered, the model root never is
	assert.Equal(t, []string{f.genDir}, f.env.CompileSourceRoots())
}

func TestRun_EmptyClassesWarnsAndCompletes(t *testing.T) {
	f := newFixture(t)
	f.req.ModelClasses = []string{}

	res, err := f.svc.Run(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, StatusWarning, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "model.classes")
	assert.Empty(t, f.proc.calls)
	assert.Equal(t, []string{f.genDir, f.modelDir}, f.env.CompileSourceRoots())
}

func TestRun_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.svc.Run(ctx, f.req)
	require.Error(t, err)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StatusCanceled, res.Status)
	assert.Equal(t, StepCheckVersion, res.FailedStep)
	assert.Empty(t, f.tc.requests)
}

type cancelingToolchain struct{ cancel context.CancelFunc }

func (c cancelingToolchain) Compile(context.Context, compiler.Request) error {
	c.cancel()
	return nil
}

func TestRun_CanceledBetweenSteps(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.WithCompiler(compiler.NewIsolated(cancelingToolchain{cancel: cancel}))

	res, err := f.svc.Run(ctx, f.req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepRegisterGeneratedRoot, res.FailedStep)
	assert.Empty(t, f.env.CompileSourceRoots())
}

func TestRun_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoEnvironment)

	req := f.req
	req.ModelSourceDir = ""
	res, err := f.svc.Run(context.Background(), req)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryValidation))
	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, StepValidateRequest, res.FailedStep)
	require.Len(t, res.Transitions, 1)
	assert.Equal(t, Transition{From: StateStart, To: StateFailed, Step: StepValidateRequest}, res.Transitions[0])
}

func TestRun_NoGeneratorConfigured(t *testing.T) {
	f := newFixture(t)
	f.svc.WithGeneratorFactory(nil)

	res, err := f.svc.Run(context.Background(), f.req)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryInternal))
	assert.Equal(t, StepValidateRequest, res.FailedStep)
}

func TestRun_MissingGeneratorBinary(t *testing.T) {
	f := newFixture(t)
	f.svc.WithGeneratorFactory(func(env *project.Environment) (*generator.Invoker, error) {
		cmd, err := generator.NewCommand("modelgen-no-such-generator", env.BaseDir, nil)
		if err != nil {
			return nil, err
		}
		return generator.NewInvoker(cmd), nil
	})

	res, err := f.svc.Run(context.Background(), f.req)
	require.Error(t, err)

	assert.Equal(t, StepGenerate, res.FailedStep)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryGeneration))
	me, ok := mgerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Model", me.Context["model_class"])
	assert.Equal(t, -1, me.Context["exit_status"])
	assert.Equal(t, 5, mgerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.Contains(t, err.Error(), "modelgen-no-such-generator")
	assert.NotContains(t, err.Error(), "write failed")

	require.Len(t, res.Invocations, 1)
	assert.Equal(t, -1, res.Invocations[0].ExitCode)
	assert.Equal(t, []string{f.genDir}, f.env.CompileSourceRoots())
}

func TestClassifyGenerateError(t *testing.T) {
	dir := t.TempDir()

	err := classifyGenerateError(&fs.PathError{Op: "mkdir", Path: dir, Err: fs.ErrPermission}, dir)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryFileSystem))

	err = classifyGenerateError(errors.New("unexpected"), dir)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryInternal))
	me, ok := mgerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, StepGenerate, me.Context["stage"])

	assert.NoError(t, classifyGenerateError(nil, dir))
}

func TestRun_GeneratorFactoryError(t *testing.T) {
	f := newFixture(t)
	f.svc.WithGeneratorFactory(func(*project.Environment) (*generator.Invoker, error) {
		return nil, errors.New("unterminated quote")
	})

	res, err := f.svc.Run(context.Background(), f.req)
	require.Error(t, err)
	assert.Equal(t, StepGenerate, res.FailedStep)
	assert.True(t, mgerrors.IsCategory(err, mgerrors.CategoryConfig))
}

func TestRun_UsesRunIDFromContext(t *testing.T) {
	f := newFixture(t)
	ctx := observability.WithRunID(context.Background(), "fixed-run")

	res, err := f.svc.Run(ctx, f.req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-run", res.RunID)
}

type countingRecorder struct {
	metrics.NoopRecorder
	stages   map[string]metrics.ResultLabel
	outcome  metrics.BuildOutcomeLabel
	roots    int
	genCalls int
}

func (c *countingRecorder) IncStageResult(stage string, r metrics.ResultLabel) {
	c.stages[stage] = r
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	c.outcome = o
}

func (c *countingRecorder) AddSourceRoots(n int) {
	c.roots += n
}

func (c *countingRecorder) ObserveGeneratorInvocation(string, time.Duration, bool) {
	c.genCalls++
}

func TestRun_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	rec := &countingRecorder{stages: map[string]metrics.ResultLabel{}}
	f.svc.WithRecorder(rec)
	f.req.ModelClasses = []string{"A", "B"}

	_, err := f.svc.Run(context.Background(), f.req)
	require.NoError(t, err)

	assert.Equal(t, metrics.BuildOutcomeSuccess, rec.outcome)
	assert.Equal(t, 2, rec.roots)
	assert.Equal(t, 2, rec.genCalls)
	assert.Equal(t, metrics.ResultSuccess, rec.stages[StepGenerate])
	assert.Len(t, rec.stages, 5)
}

func TestStatus_IsSuccess(t *testing.T) {
	assert.True(t, StatusSuccess.IsSuccess())
	assert.True(t, StatusWarning.IsSuccess())
	assert.False(t, StatusFailed.IsSuccess())
	assert.False(t, StatusCanceled.IsSuccess())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateGenerated.IsTerminal())
}
