// Package compiler compiles the hand-written model sources on their own,
// without the rest of the project's source roots.
package compiler

import (
	"git.home.luguber.info/inful/modelgen/internal/project"
)

// Request describes one isolated compile. It is built from scratch for each
// compile and never derived from the host's source root list.
type Request struct {
	SourceRoots []string
	OutputDir   string
	WorkDir     string
	Env         []string
	Flags       []string
	Offline     bool
}

// Option customises a Request built by NewRequest.
type Option func(*Request)

// WithOutputDir sets where compiled artifacts go.
func WithOutputDir(dir string) Option {
	return func(r *Request) { r.OutputDir = dir }
}

// WithFlags appends extra toolchain flags.
func WithFlags(flags ...string) Option {
	return func(r *Request) { r.Flags = append(r.Flags, flags...) }
}

// NewRequest builds the isolated compile request for modelDir. Its source
// roots are exactly [modelDir] regardless of what env already holds.
func NewRequest(env *project.Environment, modelDir string, opts ...Option) Request {
	session := env.Session.Clone()
	req := Request{
		SourceRoots: []string{modelDir},
		WorkDir:     env.BaseDir,
		Env:         session.Env,
		Offline:     session.Offline,
	}
	for _, opt := range opts {
		opt(&req)
	}
	if req.Offline {
		req.Env = append(req.Env, "GOPROXY=off")
	}
	return req
}
