package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ModelgenError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *ModelgenError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *ModelgenError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// NoModelClasses is the configuration warning raised when generation has nothing to do.
func NoModelClasses() *ModelgenError {
	return New(CategoryConfig, SeverityWarning,
		`no model classes configured (configuration parameter: "model.classes")`)
}

// Pipeline errors

func VersionTooOld(required, actual string, cause error) *ModelgenError {
	return Wrap(cause, CategoryToolchain, SeverityFatal, "toolchain version check failed").
		WithContext("required", required).
		WithContext("actual", actual)
}

func VersionUnparsable(actual string, cause error) *ModelgenError {
	return Wrap(cause, CategoryToolchain, SeverityFatal, "toolchain version is not a dotted number").
		WithContext("actual", actual)
}

func CompileFailed(sourceRoot string, cause error) *ModelgenError {
	return Wrap(cause, CategoryCompile, SeverityFatal, "isolated model compile failed").
		WithContext("source_root", sourceRoot)
}

func GenerationFailed(className string, cause error) *ModelgenError {
	return Wrap(cause, CategoryGeneration, SeverityFatal, "model generation failed").
		WithContext("model_class", className)
}

// StageFailed wraps a failure that has no more specific classification.
func StageFailed(stage string, cause error) *ModelgenError {
	return Wrap(cause, CategoryInternal, SeverityFatal, "pipeline step failed").
		WithContext("stage", stage)
}

func Canceled(stage string, cause error) *ModelgenError {
	return Wrap(cause, CategoryCanceled, SeverityFatal, "build aborted").
		WithContext("stage", stage)
}

// Filesystem errors

func WriteFailed(path string, cause error) *ModelgenError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "write failed").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *ModelgenError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
