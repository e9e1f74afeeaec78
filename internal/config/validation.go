package config

import (
	"strings"

	"github.com/kballard/go-shellquote"

	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/toolchain"
)

// Validate checks the descriptor for values no run could succeed with.
func (c *Config) Validate() error {
	switch c.Compiler.Mode {
	case CompilerModeBuild, CompilerModeTypeCheck:
	default:
		return mgerrors.ValidationFailed("compiler.mode",
			"must be one of build, typecheck; got "+string(c.Compiler.Mode))
	}

	if strings.TrimSpace(c.Generator.Command) == "" {
		return mgerrors.ValidationFailed("generator.command", "must not be empty")
	}
	if _, err := shellquote.Split(c.Generator.Command); err != nil {
		return mgerrors.ValidationFailed("generator.command", err.Error())
	}
	if c.Toolchain.VersionCommand != "" {
		if _, err := shellquote.Split(c.Toolchain.VersionCommand); err != nil {
			return mgerrors.ValidationFailed("toolchain.version_command", err.Error())
		}
	}

	if _, err := c.MinimumVersion(); err != nil {
		return mgerrors.ValidationFailed("toolchain.minimum", err.Error())
	}

	for i, class := range c.Model.Classes {
		if strings.TrimSpace(class) == "" {
			return mgerrors.ValidationFailed("model.classes", "entry must not be blank").
				WithContext("index", i)
		}
	}
	return nil
}

// MinimumVersion parses toolchain.minimum.
func (c *Config) MinimumVersion() (toolchain.Version, error) {
	return toolchain.Parse(c.Toolchain.Minimum)
}

// VersionCommandArgv splits toolchain.version_command with shell rules.
func (c *Config) VersionCommandArgv() ([]string, error) {
	if c.Toolchain.VersionCommand == "" {
		return nil, nil
	}
	return shellquote.Split(c.Toolchain.VersionCommand)
}
