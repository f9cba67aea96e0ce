// Package aggregate folds one run's merged samples into the history table.
//
// Apply appends the run's date label to the header, appends one day cell per
// observation point to every data row whose site has a complete sample set,
// and recomputes every data row's running average over its full history.
// Assignment is by (site, point) identity, so sample completion order can
// never change the outcome. A site missing any point's sample gains no cells
// at all this run; a duplicate sample for an already-filled slot is logged
// and skipped.
//
// A data row whose history holds no numeric value gets the unreachable
// sentinel written into its average cell. Setting KeepStaleAverage leaves
// the previous average untouched instead. Metadata rows are never modified.
package aggregate
