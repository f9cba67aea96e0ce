package metrics

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/cadencejames/Get-PingTimes/internal/latency"
)

// Probe outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeUnreachable = "unreachable"
	OutcomeNoData      = "nodata"
)

// OutcomeFor maps a probe value to its outcome label.
func OutcomeFor(v latency.Value) string {
	switch v {
	case latency.Unreachable:
		return OutcomeUnreachable
	case latency.NoData:
		return OutcomeNoData
	default:
		return OutcomeOK
	}
}

// Set holds the pipeline's collectors on a private registry.
type Set struct {
	Registry *prometheus.Registry

	probeOutcomes *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	runDuration   prometheus.Histogram
	runsTotal     prometheus.Counter
	phaseFailures *prometheus.CounterVec
	rowsAppended  prometheus.Gauge
	windowRows    prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New builds the Set and registers every collector, including the standard
// Go runtime and process collectors.
func New() *Set {
	s := &Set{
		Registry: prometheus.NewRegistry(),
		probeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pingtimes_probe_outcomes_total",
			Help: "Probe values recorded per observation point and outcome.",
		}, []string{"point", "outcome"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pingtimes_probe_duration_seconds",
			Help:    "Duration of one SSH ping probe, dial included.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"point"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pingtimes_run_duration_seconds",
			Help:    "Wall-clock duration of one full pipeline run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pingtimes_runs_total",
			Help: "Pipeline runs started.",
		}),
		phaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pingtimes_phase_failures_total",
			Help: "Pipeline phases that failed and were skipped.",
		}, []string{"phase"}),
		rowsAppended: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingtimes_rows_appended",
			Help: "History rows that gained day cells in the last run.",
		}),
		windowRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingtimes_window_rows",
			Help: "Rows in the last published window projection.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pingtimes_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.probeOutcomes,
		s.probeDuration,
		s.runDuration,
		s.runsTotal,
		s.phaseFailures,
		s.rowsAppended,
		s.windowRows,
		s.lastRun,
	)
	return s
}

// RecordProbe counts one probe value for an observation point.
func (s *Set) RecordProbe(point string, v latency.Value) {
	s.probeOutcomes.WithLabelValues(point, OutcomeFor(v)).Inc()
}

// ObserveProbeDuration records how long one probe took, dial included.
func (s *Set) ObserveProbeDuration(point string, d time.Duration) {
	s.probeDuration.WithLabelValues(point).Observe(d.Seconds())
}

// RunStarted counts a pipeline run.
func (s *Set) RunStarted() {
	s.runsTotal.Inc()
}

// RunFinished records the run duration and completion time.
func (s *Set) RunFinished(started time.Time) {
	s.runDuration.Observe(time.Since(started).Seconds())
	s.lastRun.SetToCurrentTime()
}

// PhaseFailed counts a skipped pipeline phase.
func (s *Set) PhaseFailed(phase string) {
	s.phaseFailures.WithLabelValues(phase).Inc()
}

// SetRowsAppended publishes the last aggregation's matched row count.
func (s *Set) SetRowsAppended(n int) {
	s.rowsAppended.Set(float64(n))
}

// SetWindowRows publishes the last projection's row count.
func (s *Set) SetWindowRows(n int) {
	s.windowRows.Set(float64(n))
}

// Handler serves the registry in scrape format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the pipeline's metric families to path in text
// exposition format, via a temp file and rename so a textfile collector
// never reads a partial dump. Runtime families (go_*, process_*) are
// omitted; the dump covers pipeline state only.
func (s *Set) WriteTextfile(path string) error {
	families, err := s.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	families = pipelineFamilies(families)

	tmpPath := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp textfile: %w", err)
	}
	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			f.Close()
			_ = os.Remove(tmpPath)
			return fmt.Errorf("encode metric family %q: %w", mf.GetName(), err)
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp textfile: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace textfile: %w", err)
	}
	return nil
}

// pipelineFamilies keeps the pingtimes_ families of a gathered set.
func pipelineFamilies(families []*dto.MetricFamily) []*dto.MetricFamily {
	kept := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "pingtimes_") {
			kept = append(kept, mf)
		}
	}
	return kept
}
