// Package config loads the modelgen build descriptor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for the descriptor when none is given.
const DefaultPath = "modelgen.yaml"

// ErrNotFound is returned by Load when the descriptor does not exist.
var ErrNotFound = errors.New("configuration file not found")

// Config is the complete build descriptor.
type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Model     ModelConfig     `yaml:"model"`
	Generator GeneratorConfig `yaml:"generator"`
	Compiler  CompilerConfig  `yaml:"compiler"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Output    OutputConfig    `yaml:"output"`
}

// ProjectConfig describes the enclosing build.
type ProjectConfig struct {
	BaseDirectory  string   `yaml:"base_directory"`
	BuildDirectory string   `yaml:"build_directory"`
	SourceRoots    []string `yaml:"source_roots"`
	Offline        bool     `yaml:"offline"`
}

// ModelConfig locates the hand-written models.
type ModelConfig struct {
	SourceDirectory string `yaml:"source_directory"`
	// Classes is nil when omitted. An explicit empty list stays empty.
	Classes []string `yaml:"classes"`
}

// GeneratorConfig describes the external generator.
type GeneratorConfig struct {
	Command         string `yaml:"command"`
	TargetDirectory string `yaml:"target_directory"`
}

// CompilerConfig selects how the model sources are compiled.
type CompilerConfig struct {
	Mode            CompilerMode `yaml:"mode"`
	Command         string       `yaml:"command"`
	Flags           []string     `yaml:"flags"`
	OutputDirectory string       `yaml:"output_directory"`
}

// CompilerMode is the isolated compile strategy.
type CompilerMode string

const (
	CompilerModeBuild     CompilerMode = "build"
	CompilerModeTypeCheck CompilerMode = "typecheck"
)

// ToolchainConfig sets the version gate.
type ToolchainConfig struct {
	Minimum        string `yaml:"minimum"`
	VersionCommand string `yaml:"version_command"`
}

// OutputConfig lists the files written after a run.
type OutputConfig struct {
	RootsManifest string `yaml:"roots_manifest"`
	ReportFile    string `yaml:"report_file"`
	MetricsFile   string `yaml:"metrics_file"`
}

// Load reads the descriptor at configPath. Environment variables are
// expanded before decoding, defaults are applied afterwards, and a relative
// project.base_directory is taken relative to the descriptor's directory.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, configPath)
	}

	// #nosec G304 -- path is chosen by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if !filepath.IsAbs(config.Project.BaseDirectory) {
		absConfig, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		config.Project.BaseDirectory = filepath.Join(filepath.Dir(absConfig), config.Project.BaseDirectory)
	}
	return &config, nil
}
