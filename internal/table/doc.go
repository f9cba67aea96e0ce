// Package table stores the persistent latency history as a wide CSV table.
//
// Layout: header [name, marker, average, date, date, ...], one data row
// per site [name, marker, average, day cells...]. The header gains one date
// label per run while every matched row gains one day cell per observation
// point, so data rows are wider than the header; the CSV reader and writer
// both accept ragged rows.
//
// Rows are classified at load time: a marker cell equal to MetaMarker, or a
// name cell containing the literal substring "site", tags the row as
// metadata. Downstream logic switches on Row.Kind and never re-inspects the
// cell strings.
//
// Save rewrites the whole file through a temp file and rename, so readers
// only ever observe a complete snapshot.
package table
