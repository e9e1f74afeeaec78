package build

import "errors"

// ErrNoEnvironment is returned when a request carries no host environment.
var ErrNoEnvironment = errors.New("modelgen: build environment required")
