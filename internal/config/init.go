package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultDescriptor = `# modelgen build descriptor.
# Relative paths resolve against project.base_directory, which itself is
# relative to this file. ${VAR} references are expanded from the environment.

project:
  base_directory: .
  build_directory: build
  # Roots the host build already compiles. Generated and model roots are
  # appended after these.
  source_roots: []

model:
  source_directory: src/main/model
  # Each class is handed to the generator as its first argument.
  classes:
    - Model

generator:
  # Shell-style command line; the class name and target directory are
  # appended as the two final arguments.
  command: model-api-gen
  target_directory: build/generated-sources/model-api

compiler:
  mode: build          # build | typecheck
  command: go
  flags: []
  output_directory: build/model-classes

toolchain:
  minimum: 3.3.9
  # Used when no --toolchain-version is given.
  version_command: ""

output:
  roots_manifest: build/source-roots.yaml
  report_file: build/modelgen-report.json
  metrics_file: ""
`

// Init writes a default descriptor to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(defaultDescriptor), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
