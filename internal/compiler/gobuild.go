package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/observability"
)

// ErrToolchainNotFound is returned when the compile command is not on PATH.
var ErrToolchainNotFound = errors.New("compile toolchain not found")

// DiagnosticError carries the compiler's own output for a failed compile.
type DiagnosticError struct {
	Output string
	Err    error
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Output)
}

func (e *DiagnosticError) Unwrap() error { return e.Err }

// GoBuild compiles every source root with `go build ./...`.
type GoBuild struct {
	// Command is the toolchain executable, "go" when empty.
	Command string
}

func (g *GoBuild) command() string {
	if g.Command == "" {
		return "go"
	}
	return g.Command
}

func (g *GoBuild) Compile(ctx context.Context, req Request) error {
	bin, err := exec.LookPath(g.command())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrToolchainNotFound, err)
	}
	if req.OutputDir != "" {
		if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
			return fmt.Errorf("create compile output directory: %w", err)
		}
	}

	for _, root := range req.SourceRoots {
		args := []string{"build"}
		args = append(args, req.Flags...)
		if req.OutputDir != "" {
			// trailing separator makes go build write one binary per main package
			args = append(args, "-o", strings.TrimRight(req.OutputDir, string(os.PathSeparator))+string(os.PathSeparator))
		}
		args = append(args, "./...")

		// #nosec G204 -- command and flags come from the build descriptor
		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Dir = root
		cmd.Env = req.Env
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		observability.DebugContext(ctx, "Invoking compile toolchain",
			logfields.Command(bin+" "+strings.Join(args, " ")), logfields.Path(root))

		if err := cmd.Run(); err != nil {
			output := strings.TrimSpace(out.String())
			if output == "" {
				return err
			}
			return &DiagnosticError{Output: output, Err: err}
		}
	}
	return nil
}
