// Package project models the enclosing build: its directories, the session
// the pipeline runs in, and the ordered list of compile source roots the
// host build consumes once the pipeline finishes.
package project

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
)

// Session is the per-invocation execution context handed to external steps.
type Session struct {
	RunID   string
	Env     []string
	Offline bool
}

// Clone returns a copy whose Env can be changed without affecting s.
func (s Session) Clone() Session {
	s.Env = slices.Clone(s.Env)
	return s
}

// Environment is the host-owned build handle. The pipeline borrows it and
// only ever appends to its source roots.
type Environment struct {
	BaseDir  string
	BuildDir string
	Session  Session

	roots []string
}

// NewEnvironment creates an environment whose compile source roots start as
// the given list.
func NewEnvironment(baseDir, buildDir string, session Session, roots ...string) *Environment {
	if session.Env == nil {
		session.Env = os.Environ()
	}
	return &Environment{
		BaseDir:  baseDir,
		BuildDir: buildDir,
		Session:  session,
		roots:    slices.Clone(roots),
	}
}

// CompileSourceRoots returns a copy of the current roots, in order.
func (e *Environment) CompileSourceRoots() []string {
	return slices.Clone(e.roots)
}

// AddCompileSourceRoot appends path to the source roots. Duplicates are kept.
func (e *Environment) AddCompileSourceRoot(path string) {
	e.roots = append(e.roots, path)
	slog.Debug("Registered compile source root", logfields.Path(path), logfields.Roots(e.roots))
}

// Resolve makes p absolute relative to the environment's base directory.
func (e *Environment) Resolve(p string) string {
	return Resolve(e.BaseDir, p)
}

// Resolve makes p absolute relative to base. Absolute paths are cleaned and
// returned unchanged otherwise.
func Resolve(base, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
