package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the document handed back to the host build.
type Manifest struct {
	RunID              string   `yaml:"run_id,omitempty"`
	CompileSourceRoots []string `yaml:"compile_source_roots"`
}

// WriteManifest writes the environment's source roots to path atomically.
func WriteManifest(path string, env *Environment) error {
	m := Manifest{
		RunID:              env.Session.RunID,
		CompileSourceRoots: env.CompileSourceRoots(),
	}
	if m.CompileSourceRoots == nil {
		m.CompileSourceRoots = []string{}
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal source roots manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure manifest directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest previously written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
