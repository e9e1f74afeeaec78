package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// WithOutput redirects the formatted diagnostic, stderr by default.
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.out = w
	return a
}

// WithExit replaces os.Exit, for callers that report the code themselves.
func (a *CLIErrorAdapter) WithExit(exit func(int)) *CLIErrorAdapter {
	a.exit = exit
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if me, ok := As(err); ok {
		return a.exitCodeFromModelgen(me)
	}

	return 1
}

// exitCodeFromModelgen maps ModelgenError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromModelgen(err *ModelgenError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryToolchain:
		return 3
	case CategoryCompile:
		return 4
	case CategoryGeneration:
		return 5
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryInternal:
		return 10 // Internal error
	case CategoryFileSystem:
		return 11
	case CategoryCanceled:
		return 130
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if me, ok := As(err); ok {
		return a.formatModelgen(me)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatModelgen formats a ModelgenError for display.
func (a *CLIErrorAdapter) formatModelgen(err *ModelgenError) string {
	if a.verbose {
		return err.Error()
	}

	msg := err.Message
	if ctx := formatContext(err.Context); ctx != "" {
		msg = fmt.Sprintf("%s (%s)", msg, ctx)
	}
	switch err.Category {
	case CategoryConfig, CategoryValidation:
		return msg
	default:
		if err.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", err.Category, msg, err.Cause)
		}
		return fmt.Sprintf("%s: %s", err.Category, msg)
	}
}

func formatContext(fields ContextFields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(a.out, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if me, ok := As(err); ok {
		return me.Category == CategoryInternal || me.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if me, ok := As(err); ok {
		level := a.slogLevelFromSeverity(me.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(me.Category)),
		}
		for k, v := range me.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if me.Cause != nil {
			attrs = append(attrs, slog.String("cause", me.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), level, me.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts ModelgenError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
