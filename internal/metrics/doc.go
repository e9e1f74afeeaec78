// Package metrics records pipeline stage and generator metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	svc := build.NewService().WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// A one-shot run writes the registry to a node-exporter textfile
// (WriteTextfile); watch mode can serve it over HTTP (HTTPHandler).
package metrics
