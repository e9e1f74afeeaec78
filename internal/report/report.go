// Package report writes a machine-readable record of one pipeline run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/modelgen/internal/build"
	"git.home.luguber.info/inful/modelgen/internal/generator"
)

// SchemaVersion is bumped whenever a field changes meaning or is removed.
const SchemaVersion = 1

// Report captures the outcome of one run.
type Report struct {
	SchemaVersion    int                    `json:"schema_version"`
	RunID            string                 `json:"run_id"`
	ToolchainVersion string                 `json:"toolchain_version"`
	Status           build.Status           `json:"status"`
	State            build.State            `json:"state"`
	FailedStep       string                 `json:"failed_step,omitempty"`
	Error            string                 `json:"error,omitempty"`
	Warnings         []string               `json:"warnings,omitempty"`
	Start            time.Time              `json:"start"`
	End              time.Time              `json:"end"`
	DurationMS       int64                  `json:"duration_ms"`
	StageDurations   map[string]int64       `json:"stage_durations_ms"`
	Transitions      []build.Transition     `json:"transitions"`
	Invocations      []generator.Invocation `json:"invocations,omitempty"`
	SourceRoots      []string               `json:"compile_source_roots"`
	ModelRevision    *Revision              `json:"model_revision,omitempty"`
}

// New builds a report from a finished run. runErr is the error Run returned.
func New(res *build.Result, toolchainVersion string, runErr error) *Report {
	r := &Report{
		SchemaVersion:    SchemaVersion,
		RunID:            res.RunID,
		ToolchainVersion: toolchainVersion,
		Status:           res.Status,
		State:            res.State,
		FailedStep:       res.FailedStep,
		Warnings:         res.Warnings,
		Start:            res.StartTime,
		End:              res.EndTime,
		DurationMS:       res.Duration.Milliseconds(),
		StageDurations:   make(map[string]int64, len(res.Transitions)),
		Transitions:      res.Transitions,
		Invocations:      res.Invocations,
		SourceRoots:      res.SourceRoots,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	for _, tr := range res.Transitions {
		if tr.Step != "" && tr.To != build.StateFailed {
			r.StageDurations[tr.Step] = tr.Duration.Milliseconds()
		}
	}
	return r
}

// WithRevision attaches the model sources' git revision.
func (r *Report) WithRevision(rev *Revision) *Report {
	r.ModelRevision = rev
	return r
}

// Persist writes the report as JSON to path atomically.
func (r *Report) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure directory for report: %w", err)
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	return nil
}

// Summary returns a short human-readable line describing the run.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run=%s status=%s state=%s duration=%dms generated=%d roots=%d",
		r.RunID, r.Status, r.State, r.DurationMS, len(r.Invocations), len(r.SourceRoots))
	if r.FailedStep != "" {
		fmt.Fprintf(&b, " failed_step=%s", r.FailedStep)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, " warnings=%d", len(r.Warnings))
	}
	if r.ModelRevision != nil {
		fmt.Fprintf(&b, " model_rev=%s", r.ModelRevision.Short())
	}
	return b.String()
}
