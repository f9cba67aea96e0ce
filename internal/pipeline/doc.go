// Package pipeline runs one measurement cycle end to end: probe every host
// from every observation point, write the run snapshot, fold the samples into
// the history table and export the trailing window.
//
// Phases are contained: a failing phase is logged and counted, and the
// remaining phases still run with whatever state exists on disk. Sampling is
// the exception, because the snapshot and aggregate phases have nothing to
// work with without it; the window phase runs regardless, re-projecting the
// history file as it stands.
package pipeline
