package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/tools/go/packages"
)

// TypeCheck loads and type-checks every source root in process. It produces
// no artifacts; only diagnostics.
type TypeCheck struct{}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedImports |
	packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo

func (TypeCheck) Compile(ctx context.Context, req Request) error {
	for _, root := range req.SourceRoots {
		cfg := &packages.Config{
			Context:    ctx,
			Mode:       loadMode,
			Dir:        root,
			Env:        req.Env,
			BuildFlags: req.Flags,
			Tests:      false,
		}
		pkgs, err := packages.Load(cfg, "./...")
		if err != nil {
			return fmt.Errorf("load packages in %s: %w", root, err)
		}
		if len(pkgs) == 0 {
			return &DiagnosticError{Output: "no Go packages found", Err: errors.New("empty source root")}
		}

		var diags []string
		packages.Visit(pkgs, nil, func(p *packages.Package) {
			for _, e := range p.Errors {
				diags = append(diags, e.Error())
			}
		})
		if len(diags) > 0 {
			return &DiagnosticError{
				Output: strings.Join(diags, "\n"),
				Err:    fmt.Errorf("%d type errors", len(diags)),
			}
		}
	}
	return nil
}
