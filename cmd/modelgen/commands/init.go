package commands

import (
	"fmt"

	"git.home.luguber.info/inful/modelgen/internal/config"
	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing build descriptor"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	fmt.Fprintf(global.Out, "Writing build descriptor to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return mgerrors.WriteFailed(root.Config, err)
	}
	fmt.Fprintln(global.Out, "initialized successfully")
	return nil
}
