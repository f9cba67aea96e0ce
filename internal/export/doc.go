// Package export serializes run artifacts.
//
// WriteResults writes the per-run snapshot CSV, one row per merged host,
// header tier,sitename,sitecode,ip followed by one column per observation
// point. Script renders a window projection as the script-embeddable data
// block consumed by the front end; its byte layout is fixed and
// golden-tested.
package export
