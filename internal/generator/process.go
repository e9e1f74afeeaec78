// Package generator drives the external model code generator, once per
// configured model class.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/observability"
)

// ExitResult is what a finished generator process reports back.
type ExitResult struct {
	Code     int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Process is the external generator contract. A non-zero exit is reported
// through ExitResult.Code; the error is reserved for failures to launch.
type Process interface {
	Invoke(ctx context.Context, args []string) (ExitResult, error)
}

// Command runs the generator as a subprocess.
type Command struct {
	argv []string
	dir  string
	env  []string
}

// NewCommand splits commandLine with shell rules. The subprocess runs in dir
// with env as its environment.
func NewCommand(commandLine, dir string, env []string) (*Command, error) {
	argv, err := shellquote.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse generator command %q: %w", commandLine, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("generator command is empty")
	}
	return &Command{argv: argv, dir: dir, env: env}, nil
}

// Argv returns the full argument vector for the given positional arguments.
func (c *Command) Argv(args []string) []string {
	out := make([]string, 0, len(c.argv)+len(args))
	out = append(out, c.argv...)
	return append(out, args...)
}

func (c *Command) Invoke(ctx context.Context, args []string) (ExitResult, error) {
	argv := c.Argv(args)
	// #nosec G204 -- generator command comes from the build descriptor
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.dir
	cmd.Env = c.env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	observability.DebugContext(ctx, "Invoking generator", logfields.Command(CommandLine(argv)))
	start := time.Now()
	err := cmd.Run()
	res := ExitResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if out := strings.TrimSpace(res.Stdout); out != "" {
		observability.InfoContext(ctx, "generator stdout", slogOutput(out))
	}
	if errOut := strings.TrimSpace(res.Stderr); errOut != "" {
		observability.WarnContext(ctx, "generator stderr", slogOutput(errOut))
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			res.Code = exitErr.ExitCode()
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, fmt.Errorf("run generator: %w", err)
	}
	return res, nil
}

// CommandLine renders argv as a shell-quoted command line.
func CommandLine(argv []string) string {
	return shellquote.Join(argv...)
}
