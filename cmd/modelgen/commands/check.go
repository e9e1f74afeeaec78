package commands

import (
	"context"
	"errors"
	"fmt"

	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(ctx context.Context, global *Global, root *CLI) error {
	cfg, err := loadConfig(ctx, root)
	if err != nil {
		return err
	}
	version, err := toolchainVersion(ctx, root, cfg)
	if err != nil {
		return err
	}
	minimum, err := cfg.MinimumVersion()
	if err != nil {
		return mgerrors.ValidationFailed("toolchain.minimum", err.Error())
	}
	if err := toolchain.NewGate(minimum).Check(ctx, version); err != nil {
		var verr *toolchain.VersionError
		if errors.As(err, &verr) {
			return mgerrors.VersionTooOld(minimum.String(), version, err)
		}
		return mgerrors.VersionUnparsable(version, err)
	}
	fmt.Fprintf(global.Out, "toolchain %s satisfies minimum %s\n", version, minimum)
	return nil
}
