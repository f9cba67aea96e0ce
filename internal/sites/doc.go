// Package sites loads site metadata and joins it with probe results.
//
// Load(path, pointIDs) reads the sites CSV (header-addressed columns ip,
// sitename, sitecode, tier, optional point) and binds every entry to one
// observation point: the explicit point column when present, otherwise the
// k-th occurrence of a site name binds to the k-th configured point. A
// binding that cannot be resolved, or two entries claiming the same
// (site, point) slot, is a load error.
//
// Merge joins probe results with sites by host address. A site with no
// sample, or a sample for an unknown host, is dropped with a warning and
// never an error.
package sites
