package config

import (
	"git.home.luguber.info/inful/modelgen/internal/project"
)

// Resolve returns a copy of c with every path made absolute below
// project.base_directory.
func (c *Config) Resolve() *Config {
	out := *c
	base := c.Project.BaseDirectory
	r := func(p string) string { return project.Resolve(base, p) }

	out.Project.BuildDirectory = r(c.Project.BuildDirectory)
	out.Project.SourceRoots = make([]string, 0, len(c.Project.SourceRoots))
	for _, root := range c.Project.SourceRoots {
		out.Project.SourceRoots = append(out.Project.SourceRoots, r(root))
	}
	out.Model.SourceDirectory = r(c.Model.SourceDirectory)
	out.Model.Classes = append([]string{}, c.Model.Classes...)
	out.Generator.TargetDirectory = r(c.Generator.TargetDirectory)
	out.Compiler.OutputDirectory = r(c.Compiler.OutputDirectory)
	out.Compiler.Flags = append([]string(nil), c.Compiler.Flags...)
	out.Output.RootsManifest = r(c.Output.RootsManifest)
	out.Output.ReportFile = r(c.Output.ReportFile)
	out.Output.MetricsFile = r(c.Output.MetricsFile)
	return &out
}

// Environment builds the host build handle described by a resolved c.
func (c *Config) Environment(session project.Session) *project.Environment {
	session.Offline = session.Offline || c.Project.Offline
	return project.NewEnvironment(c.Project.BaseDirectory, c.Project.BuildDirectory, session, c.Project.SourceRoots...)
}
