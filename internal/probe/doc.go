// Package probe measures round-trip latency from fixed observation points to
// remote hosts.
//
// A Prober issues one IOS ping on one observation-point router and returns
// the parsed latency value; SSHProber is the production implementation, one
// transient SSH session per probe. ParseTranscript applies the Cisco
// success-rate rules: a zero success rate yields the unreachable sentinel, a
// malformed rate line yields the no-data sentinel.
//
// The Sampler fans one task per target host out over a bounded worker pool.
// Each task probes every observation point in turn; a transport failure on
// any point degrades that host's whole record to unreachable sentinels
// without affecting other hosts.
package probe
