package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/modelgen/internal/config"
	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/observability"
	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config           string           `short:"c" help:"Build descriptor path" default:"${config_path}"`
	Verbose          bool             `short:"v" help:"Enable verbose logging"`
	Version          kong.VersionFlag `name:"version" help:"Show version and exit"`
	ToolchainVersion string           `name:"toolchain-version" env:"MODELGEN_TOOLCHAIN_VERSION" help:"Version of the host build toolchain"`

	Generate GenerateCmd `cmd:"" help:"Check the toolchain, compile the models, run the generator and register source roots"`
	Check    CheckCmd    `cmd:"" help:"Only check the toolchain version"`
	Init     InitCmd     `cmd:"" help:"Write a default build descriptor"`
	Watch    WatchCmd    `cmd:"" help:"Run the pipeline, then again whenever model sources change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(kctx *kong.Context) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(kctx.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads, validates and resolves the descriptor named by --config.
func loadConfig(ctx context.Context, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if errors.Is(err, config.ErrNotFound) {
		return nil, mgerrors.ConfigNotFound(root.Config)
	}
	if err != nil {
		return nil, mgerrors.ConfigInvalid(root.Config, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	observability.DebugContext(ctx, "Loaded build descriptor", logfields.Path(root.Config))
	return cfg.Resolve(), nil
}

// toolchainVersion returns the host-supplied version, falling back to the
// configured version command.
func toolchainVersion(ctx context.Context, root *CLI, cfg *config.Config) (string, error) {
	if root.ToolchainVersion != "" {
		return root.ToolchainVersion, nil
	}
	argv, err := cfg.VersionCommandArgv()
	if err != nil {
		return "", mgerrors.ValidationFailed("toolchain.version_command", err.Error())
	}
	if len(argv) == 0 {
		return "", mgerrors.ValidationFailed("toolchain-version",
			"no toolchain version given; pass --toolchain-version, set MODELGEN_TOOLCHAIN_VERSION or configure toolchain.version_command")
	}
	v, err := toolchain.Detect(ctx, argv)
	if err != nil {
		return "", mgerrors.Wrap(err, mgerrors.CategoryToolchain, mgerrors.SeverityFatal, "toolchain version detection failed").
			WithContext("command", cfg.Toolchain.VersionCommand)
	}
	observability.InfoContext(ctx, "Detected toolchain version", logfields.Version(v))
	return v, nil
}
