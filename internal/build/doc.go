// Package build runs the model generation pipeline for one project.
//
// The pipeline is a fixed sequence of steps, each moving the run to the next
// state:
//
//	Start -> VersionChecked -> ModelCompiled -> GeneratedRootRegistered
//	      -> Generated -> ModelRootRegistered -> Done
//
// Any failing step moves the run to the absorbing Failed state and nothing
// after it runs. Side effects of earlier steps are left in place. All
// execution paths (generate, watch, tests) route through Service.
package build
