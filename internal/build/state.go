package build

import "time"

// State is a pipeline state.
type State string

const (
	StateStart                   State = "start"
	StateVersionChecked          State = "version_checked"
	StateModelCompiled           State = "model_compiled"
	StateGeneratedRootRegistered State = "generated_root_registered"
	StateGenerated               State = "generated"
	StateModelRootRegistered     State = "model_root_registered"
	StateDone                    State = "done"
	StateFailed                  State = "failed"
)

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Step names, used as the stage label in logs, metrics and Result.FailedStep.
const (
	StepValidateRequest       = "validate_request"
	StepCheckVersion          = "check_version"
	StepCompileModel          = "compile_model"
	StepRegisterGeneratedRoot = "register_generated_root"
	StepGenerate              = "generate"
	StepRegisterModelRoot     = "register_model_root"
	StepFinish                = "finish"
)

// Transition records one state change.
type Transition struct {
	From     State         `json:"from"`
	To       State         `json:"to"`
	Step     string        `json:"step"`
	Duration time.Duration `json:"duration_ns"`
}
