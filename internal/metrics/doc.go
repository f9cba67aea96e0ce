// Package metrics exposes the pipeline's operational state as Prometheus
// collectors on a private registry.
//
// The pipeline drives the Set: probe outcomes per observation point, run
// durations and counts, per-phase failures, rows appended by the last
// aggregation and the published window size. Handler serves the registry
// for daemon mode; WriteTextfile dumps it in text exposition format for a
// node_exporter textfile collector, the only export path a run-once
// invocation has.
package metrics
