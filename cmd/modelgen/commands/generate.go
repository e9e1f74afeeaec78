package commands

import (
	"context"
	"fmt"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct{}

func (g *GenerateCmd) Run(ctx context.Context, global *Global, root *CLI) error {
	cfg, err := loadConfig(ctx, root)
	if err != nil {
		return err
	}
	version, err := toolchainVersion(ctx, root, cfg)
	if err != nil {
		return err
	}
	r, err := newRunner(cfg, nil)
	if err != nil {
		return err
	}
	_, rep, err := r.runOnce(ctx, version)
	fmt.Fprintln(global.Out, rep.Summary())
	return err
}
