package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyModelClass = "model_class"
	KeyPath       = "path"
	KeyRoots      = "source_roots"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyVersion    = "version"
	KeyRequired   = "required_version"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr          { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func State(s string) slog.Attr           { return slog.String(KeyState, s) }
func ModelClass(c string) slog.Attr      { return slog.String(KeyModelClass, c) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Roots(r []string) slog.Attr         { return slog.Any(KeyRoots, r) }
func Command(line string) slog.Attr      { return slog.String(KeyCommand, line) }
func ExitCode(code int) slog.Attr        { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Version(v string) slog.Attr         { return slog.String(KeyVersion, v) }
func RequiredVersion(v string) slog.Attr { return slog.String(KeyRequired, v) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
