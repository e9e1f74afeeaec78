package config

import (
	"path/filepath"

	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

const (
	defaultBuildDirectory  = "build"
	defaultModelSourceDir  = "src/main/model"
	defaultModelClass      = "Model"
	defaultGeneratorCmd    = "model-api-gen"
	defaultCompilerCommand = "go"
)

// applyDefaults fills every unset field. Paths that live in the build
// output default to locations below project.build_directory.
func applyDefaults(c *Config) {
	if c.Project.BaseDirectory == "" {
		c.Project.BaseDirectory = "."
	}
	if c.Project.BuildDirectory == "" {
		c.Project.BuildDirectory = defaultBuildDirectory
	}
	if c.Model.SourceDirectory == "" {
		c.Model.SourceDirectory = defaultModelSourceDir
	}
	if c.Model.Classes == nil {
		c.Model.Classes = []string{defaultModelClass}
	}
	if c.Generator.Command == "" {
		c.Generator.Command = defaultGeneratorCmd
	}
	if c.Generator.TargetDirectory == "" {
		c.Generator.TargetDirectory = filepath.Join(c.Project.BuildDirectory, "generated-sources", "model-api")
	}
	if c.Compiler.Mode == "" {
		c.Compiler.Mode = CompilerModeBuild
	}
	if c.Compiler.Command == "" {
		c.Compiler.Command = defaultCompilerCommand
	}
	if c.Compiler.OutputDirectory == "" {
		c.Compiler.OutputDirectory = filepath.Join(c.Project.BuildDirectory, "model-classes")
	}
	if c.Toolchain.Minimum == "" {
		c.Toolchain.Minimum = toolchain.MinimumSupported.String()
	}
	if c.Output.RootsManifest == "" {
		c.Output.RootsManifest = filepath.Join(c.Project.BuildDirectory, "source-roots.yaml")
	}
	if c.Output.ReportFile == "" {
		c.Output.ReportFile = filepath.Join(c.Project.BuildDirectory, "modelgen-report.json")
	}
}

// Default returns a descriptor with every default applied and the project
// rooted at the current directory.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}
