package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestModelgenError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ModelgenError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("exit status 2"), CategoryGeneration, SeverityFatal, "model generation failed"),
			expected: "generation (fatal): model generation failed: exit status 2",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestModelgenError_WithContext(t *testing.T) {
	err := New(CategoryCompile, SeverityFatal, "compile failed").
		WithContext("source_root", "models/").
		WithContext("mode", "build")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["source_root"] != "models/" {
		t.Errorf("Context[source_root] = %v, want models/", err.Context["source_root"])
	}
	if err.Context["mode"] != "build" {
		t.Errorf("Context[mode] = %v, want build", err.Context["mode"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	wrapped := fmt.Errorf("outer: %w", New(CategoryToolchain, SeverityFatal, "too old"))
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match compile category", configErr, CategoryCompile, false},
		{"wrapped error is found through the chain", wrapped, CategoryToolchain, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCategory(test.err, test.category); got != test.expected {
				t.Errorf("IsCategory() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestGetCategory_DefaultsToInternal(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryInternal)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("VersionTooOld", func(t *testing.T) {
		cause := fmt.Errorf("3.0.0 < 3.3.9")
		err := VersionTooOld("3.3.9", "3.0.0", cause)
		if err.Category != CategoryToolchain {
			t.Errorf("Category = %v, want %v", err.Category, CategoryToolchain)
		}
		if err.Context["required"] != "3.3.9" || err.Context["actual"] != "3.0.0" {
			t.Errorf("unexpected context: %v", err.Context)
		}
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
	})

	t.Run("GenerationFailed", func(t *testing.T) {
		err := GenerationFailed("Extra", fmt.Errorf("exit 1"))
		if err.Category != CategoryGeneration {
			t.Errorf("Category = %v, want %v", err.Category, CategoryGeneration)
		}
		if err.Context["model_class"] != "Extra" {
			t.Errorf("Context[model_class] = %v, want Extra", err.Context["model_class"])
		}
	})

	t.Run("NoModelClasses", func(t *testing.T) {
		err := NoModelClasses()
		if err.Severity != SeverityWarning {
			t.Errorf("Severity = %v, want %v", err.Severity, SeverityWarning)
		}
		if !strings.Contains(err.Message, "model.classes") {
			t.Errorf("message should name the parameter, got %q", err.Message)
		}
	})
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{fmt.Errorf("plain"), 1},
		{ValidationFailed("compiler.mode", "unknown"), 2},
		{VersionTooOld("3.3.9", "3.0.0", nil), 3},
		{CompileFailed("models", nil), 4},
		{GenerationFailed("Model", nil), 5},
		{ConfigNotFound("modelgen.yaml"), 7},
		{InternalError("boom", nil), 10},
		{fmt.Errorf("wrapped: %w", CompileFailed("models", nil)), 4},
	}

	for _, tt := range tests {
		if got := adapter.ExitCodeFor(tt.err); got != tt.code {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	got := adapter.FormatError(GenerationFailed("Extra", fmt.Errorf("exit status 3")))
	want := "generation: model generation failed (model_class=Extra): exit status 3"
	if got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}

	got = adapter.FormatError(ConfigNotFound("modelgen.yaml"))
	want = "configuration file not found (path=modelgen.yaml)"
	if got != want {
		t.Errorf("FormatError() = %q, want %q", got, want)
	}

	verbose := NewCLIErrorAdapter(true, nil)
	if got := verbose.FormatError(ConfigNotFound("x")); got != "config (fatal): configuration file not found" {
		t.Errorf("verbose FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	exitCode := -1
	adapter.exit = func(code int) { exitCode = code }

	adapter.HandleError(CompileFailed("models", fmt.Errorf("syntax error")))

	if exitCode != 4 {
		t.Errorf("exit code = %d, want 4", exitCode)
	}
	if !strings.Contains(out.String(), "isolated model compile failed") {
		t.Errorf("missing diagnostic in output: %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=compile") {
		t.Errorf("missing category in log: %q", logs.String())
	}
}
