// Package latency defines the cell vocabulary shared by every artifact in
// the pipeline: a latency value is the decimal text of a millisecond
// reading, or one of two failure sentinels. The package owns the numeric
// grammar and the rounding rule used for row averages.
package latency
