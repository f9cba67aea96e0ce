package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cadencejames/Get-PingTimes/internal/aggregate"
	"github.com/cadencejames/Get-PingTimes/internal/config"
	"github.com/cadencejames/Get-PingTimes/internal/export"
	"github.com/cadencejames/Get-PingTimes/internal/metrics"
	"github.com/cadencejames/Get-PingTimes/internal/probe"
	"github.com/cadencejames/Get-PingTimes/internal/sites"
	"github.com/cadencejames/Get-PingTimes/internal/table"
	"github.com/cadencejames/Get-PingTimes/internal/window"
)

// Phase names as they appear in logs, reports and metric labels.
const (
	PhaseSample    = "sample"
	PhaseResults   = "results"
	PhaseAggregate = "aggregate"
	PhaseWindow    = "window"
)

// Report summarizes one run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Hosts is the number of hosts probed, Merged the number of samples
	// that matched a site entry.
	Hosts  int
	Merged int

	// Stats is the aggregate phase outcome. Zero when that phase was
	// skipped or failed.
	Stats aggregate.Stats

	// WindowRows is the row count of the exported window projection.
	WindowRows int

	// FailedPhases lists the phases that errored, in pipeline order.
	FailedPhases []string
}

// Pipeline executes measurement runs against a fixed config snapshot.
type Pipeline struct {
	cfg     *config.Config
	prober  probe.Prober
	metrics *metrics.Set

	// Now is the run clock. Tests inject a fixed one to pin date labels.
	Now func() time.Time
}

// New returns a Pipeline over the given config snapshot. The daemon builds a
// fresh Pipeline per run so a reloaded config takes effect at the next tick.
func New(cfg *config.Config, prober probe.Prober, m *metrics.Set) *Pipeline {
	return &Pipeline{cfg: cfg, prober: prober, metrics: m, Now: time.Now}
}

// Run executes one cycle. It never returns an error: phase failures are
// recorded in the report and the run completes with what it has. The returned
// projection is nil when the window phase failed.
func (p *Pipeline) Run(ctx context.Context) (*Report, *window.Projection) {
	started := p.Now()
	report := &Report{RunID: uuid.NewString(), StartedAt: started}
	log := slog.With("run_id", report.RunID)
	mon := &p.cfg.Monitor

	p.metrics.RunStarted()
	log.Info("pipeline: run starting", "points", len(mon.Points), "workers", mon.Probe.Workers)

	merged, sampled := p.sample(ctx, log, report)
	if sampled {
		if err := export.WriteResults(mon.Files.Results, mon.PointIDs(), merged); err != nil {
			p.failPhase(log, report, PhaseResults, err)
		} else {
			log.Info("pipeline: results written", "file", mon.Files.Results, "rows", len(merged))
		}

		if err := p.aggregate(log, report, merged); err != nil {
			p.failPhase(log, report, PhaseAggregate, err)
		}
	}

	proj, err := p.project(log, report)
	if err != nil {
		p.failPhase(log, report, PhaseWindow, err)
	}

	report.FinishedAt = p.Now()
	p.metrics.RunFinished(started)
	log.Info("pipeline: run finished",
		"duration", report.FinishedAt.Sub(report.StartedAt),
		"hosts", report.Hosts,
		"merged", report.Merged,
		"rows_appended", report.Stats.RowsAppended,
		"window_rows", report.WindowRows,
		"failed_phases", report.FailedPhases)
	return report, proj
}

// sample loads the site list, probes every host and merges the results with
// site identity. The bool reports whether sampling produced a merged set;
// false skips the results and aggregate phases.
func (p *Pipeline) sample(ctx context.Context, log *slog.Logger, report *Report) ([]sites.MergedSample, bool) {
	mon := &p.cfg.Monitor
	all, err := sites.Load(mon.Files.Sites, mon.PointIDs())
	if err != nil {
		p.failPhase(log, report, PhaseSample, err)
		return nil, false
	}

	sampler := probe.NewSampler(p.prober, mon.Points, mon.Probe.Workers, log)
	results := sampler.Run(ctx, sites.IPs(all))
	report.Hosts = len(results)
	for _, r := range results {
		for pt, v := range r.Values {
			p.metrics.RecordProbe(pt, v)
		}
		for pt, d := range r.Elapsed {
			p.metrics.ObserveProbeDuration(pt, d)
		}
	}

	merged := sites.Merge(all, results, log)
	report.Merged = len(merged)
	log.Info("pipeline: sampling complete", "hosts", report.Hosts, "merged", report.Merged)
	return merged, true
}

// aggregate folds the merged samples into the history table and rewrites it.
func (p *Pipeline) aggregate(log *slog.Logger, report *Report, merged []sites.MergedSample) error {
	mon := &p.cfg.Monitor
	tbl, err := table.Load(mon.Files.History)
	if err != nil {
		return err
	}

	agg := aggregate.New(mon.PointIDs())
	agg.KeepStaleAverage = mon.KeepStaleAverage
	agg.Log = log
	report.Stats = agg.Apply(tbl, merged, p.Now())

	if err := tbl.Save(mon.Files.History); err != nil {
		return err
	}
	p.metrics.SetRowsAppended(report.Stats.RowsAppended)
	log.Info("pipeline: history updated",
		"file", mon.Files.History,
		"date", report.Stats.DateLabel,
		"rows_appended", report.Stats.RowsAppended,
		"incomplete_sites", report.Stats.IncompleteSites,
		"unknown_sites", report.Stats.UnknownSites,
		"violations", report.Stats.Violations)
	return nil
}

// project re-reads the history file, derives the trailing window and writes
// the script export. Reading from disk rather than reusing the in-memory
// table means the export reflects exactly what the aggregate phase persisted,
// or the previous state when that phase failed.
func (p *Pipeline) project(log *slog.Logger, report *Report) (*window.Projection, error) {
	mon := &p.cfg.Monitor
	tbl, err := table.Load(mon.Files.History)
	if err != nil {
		return nil, err
	}

	proj := window.New(mon.WindowDays, mon.SkipSet()).Project(tbl)
	if err := export.WriteScript(mon.Files.Export, proj); err != nil {
		return nil, err
	}
	report.WindowRows = len(proj.Rows)
	p.metrics.SetWindowRows(report.WindowRows)
	log.Info("pipeline: window exported", "file", mon.Files.Export, "rows", report.WindowRows, "days", mon.WindowDays)
	return proj, nil
}

func (p *Pipeline) failPhase(log *slog.Logger, report *Report, phase string, err error) {
	report.FailedPhases = append(report.FailedPhases, phase)
	p.metrics.PhaseFailed(phase)
	log.Error("pipeline: phase failed, continuing", "phase", phase, "err", err)
}
