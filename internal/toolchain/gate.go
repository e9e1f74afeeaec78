package toolchain

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/observability"
)

// VersionError is returned when the host toolchain is older than required.
type VersionError struct {
	Required Version
	Actual   string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("toolchain version needs to be at least %s for modelgen to run, your version is %s", e.Required, e.Actual)
}

// Gate rejects toolchain versions below Minimum.
type Gate struct {
	Minimum Version
}

// NewGate returns a gate with the given threshold. Pass MinimumSupported for
// the default.
func NewGate(minimum Version) *Gate {
	return &Gate{Minimum: minimum}
}

// Check parses raw and compares it against the gate's minimum. Both parse
// failures and versions below the threshold are logged before returning.
func (g *Gate) Check(ctx context.Context, raw string) error {
	v, err := Parse(raw)
	if err != nil {
		observability.ErrorContext(ctx, "Unable to parse toolchain version",
			logfields.Version(raw), logfields.Error(err))
		return err
	}
	if v.Less(g.Minimum) {
		verr := &VersionError{Required: g.Minimum, Actual: raw}
		observability.ErrorContext(ctx, verr.Error(),
			logfields.RequiredVersion(g.Minimum.String()), logfields.Version(raw))
		return verr
	}
	observability.DebugContext(ctx, "Toolchain version accepted",
		logfields.RequiredVersion(g.Minimum.String()), logfields.Version(raw))
	return nil
}
