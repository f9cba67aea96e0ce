package probe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cadencejames/Get-PingTimes/internal/config"
	"github.com/cadencejames/Get-PingTimes/internal/latency"
)

// Result is one host's measurement record for a single run: one value per
// configured observation point, keyed by point ID. Elapsed holds the wall
// time of each probe actually attempted; after a transport failure the
// remaining points are never dialed and have no entry.
type Result struct {
	IP      string
	Values  map[string]latency.Value
	Elapsed map[string]time.Duration
}

// Sampler fans one probe task per target host out over a bounded worker
// pool. Tasks are independent and share no mutable state.
type Sampler struct {
	prober  Prober
	points  []config.Point
	workers int
	log     *slog.Logger
}

// NewSampler builds a Sampler probing every point in points for each target.
// A workers value below 1 is raised to 1. A nil log falls back to the
// process default logger.
func NewSampler(prober Prober, points []config.Point, workers int, log *slog.Logger) *Sampler {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{prober: prober, points: points, workers: workers, log: log}
}

// Run probes every target from every observation point and returns one
// Result per target, in completion order. Callers must therefore match
// results by host identity, never by position.
func (s *Sampler) Run(ctx context.Context, targets []string) []Result {
	workCh := make(chan string)
	resCh := make(chan Result, len(targets))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ip := range workCh {
				resCh <- s.sampleOne(ctx, ip)
			}
		}()
	}
	for _, ip := range targets {
		workCh <- ip
	}
	close(workCh)
	wg.Wait()
	close(resCh)

	results := make([]Result, 0, len(targets))
	for r := range resCh {
		results = append(results, r)
	}
	return results
}

// sampleOne probes ip from every observation point in order. A transport
// error from any point degrades the whole record to unreachable sentinels.
func (s *Sampler) sampleOne(ctx context.Context, ip string) Result {
	values := make(map[string]latency.Value, len(s.points))
	elapsed := make(map[string]time.Duration, len(s.points))
	for _, pt := range s.points {
		start := time.Now()
		v, err := s.prober.Probe(ctx, pt, ip)
		elapsed[pt.ID] = time.Since(start)
		if err != nil {
			s.log.Warn("probe: transport failure", "target", ip, "point", pt.ID, "err", err)
			return unreachableResult(ip, s.points, elapsed)
		}
		values[pt.ID] = v
	}
	return Result{IP: ip, Values: values, Elapsed: elapsed}
}

// unreachableResult is the full-failure record for ip.
func unreachableResult(ip string, points []config.Point, elapsed map[string]time.Duration) Result {
	values := make(map[string]latency.Value, len(points))
	for _, pt := range points {
		values[pt.ID] = latency.Unreachable
	}
	return Result{IP: ip, Values: values, Elapsed: elapsed}
}
