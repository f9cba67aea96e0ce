package aggregate

import (
	"log/slog"
	"time"

	"github.com/cadencejames/Get-PingTimes/internal/latency"
	"github.com/cadencejames/Get-PingTimes/internal/sites"
	"github.com/cadencejames/Get-PingTimes/internal/table"
)

// DateFormat renders the header label for a run day, e.g. "07-Mar-26".
const DateFormat = "02-Jan-06"

// Aggregator appends run samples to the history table, one day cell per
// observation point per matched row.
type Aggregator struct {
	// Points is the ordered observation point ID list; it fixes both the
	// expected per-site sample count and the appended cell order.
	Points []string

	// KeepStaleAverage leaves the previous average cell untouched when a
	// data row has no numeric history, instead of writing the unreachable
	// sentinel.
	KeepStaleAverage bool

	// Log receives slot violations and drop warnings. Nil means the process
	// default logger.
	Log *slog.Logger
}

// New returns an Aggregator for the given observation points.
func New(points []string) *Aggregator {
	return &Aggregator{Points: points}
}

// Stats summarizes one Apply call.
type Stats struct {
	DateLabel       string
	RowsAppended    int
	CellsAppended   int
	IncompleteSites int // sites missing at least one point's sample
	UnknownSites    int // sampled sites with no data row in the table
	Violations      int // duplicate samples for an already-filled slot
}

// Apply folds samples into tbl for the run day now. The header always gains
// the day's date label; a data row gains cells only when every observation
// point has a sample for its site. Every data row's average is then
// recomputed over its full history. The caller persists the table.
func (a *Aggregator) Apply(tbl *table.Table, samples []sites.MergedSample, now time.Time) Stats {
	log := a.Log
	if log == nil {
		log = slog.Default()
	}
	stats := Stats{DateLabel: now.Format(DateFormat)}
	tbl.Header = append(tbl.Header, stats.DateLabel)

	for name, vals := range a.collect(samples, &stats, log) {
		row, ok := tbl.Lookup(name)
		if !ok || row.Kind != table.Data {
			stats.UnknownSites++
			log.Warn("aggregate: no data row for sampled site", "site", name)
			continue
		}
		if !a.complete(vals) {
			stats.IncompleteSites++
			log.Warn("aggregate: incomplete sample set, appending nothing",
				"site", name, "have", len(vals), "want", len(a.Points))
			continue
		}
		for _, pt := range a.Points {
			row.Cells = append(row.Cells, string(vals[pt]))
		}
		stats.RowsAppended++
		stats.CellsAppended += len(a.Points)
	}

	for i := range tbl.Rows {
		row := &tbl.Rows[i]
		if row.Kind != table.Data {
			continue
		}
		if avg, ok := latency.Average(row.DayCells()); ok {
			row.Cells[table.ColAverage] = avg
		} else if !a.KeepStaleAverage {
			row.Cells[table.ColAverage] = string(latency.Unreachable)
		}
	}
	return stats
}

// complete reports whether every configured point has a sample in vals.
func (a *Aggregator) complete(vals map[string]latency.Value) bool {
	for _, pt := range a.Points {
		if _, ok := vals[pt]; !ok {
			return false
		}
	}
	return true
}

// collect groups samples into site -> point -> value, counting duplicate
// slot claims as violations and keeping the first claim.
func (a *Aggregator) collect(samples []sites.MergedSample, stats *Stats, log *slog.Logger) map[string]map[string]latency.Value {
	bySite := make(map[string]map[string]latency.Value)
	for _, s := range samples {
		v, ok := s.Values[s.Site.Point]
		if !ok {
			v = latency.NoData
		}
		slots := bySite[s.Site.Name]
		if slots == nil {
			slots = make(map[string]latency.Value, len(a.Points))
			bySite[s.Site.Name] = slots
		}
		if _, filled := slots[s.Site.Point]; filled {
			stats.Violations++
			log.Warn("aggregate: duplicate sample for slot, keeping the first",
				"site", s.Site.Name, "point", s.Site.Point, "ip", s.Site.IP)
			continue
		}
		slots[s.Site.Point] = v
	}
	return bySite
}
