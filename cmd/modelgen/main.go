package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/modelgen/cmd/modelgen/commands"
	"git.home.luguber.info/inful/modelgen/internal/config"
	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/observability"
	"git.home.luguber.info/inful/modelgen/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run parses args, executes the selected command and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("modelgen"),
		kong.Description("Compile hand-written models, run the model API generator and register the resulting source roots."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String(), "config_path": config.DefaultPath},
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 10
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "modelgen: %v\n", err)
		return 2
	}
	kctx.BindTo(observability.WithConfig(ctx, cli.Config), (*context.Context)(nil))

	runErr := kctx.Run(&commands.Global{Logger: slog.Default(), Out: stdout}, cli)

	code := 0
	mgerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).
		WithOutput(stderr).
		WithExit(func(c int) { code = c }).
		HandleError(runErr)
	return code
}
