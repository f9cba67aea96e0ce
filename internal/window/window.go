package window

import (
	"github.com/cadencejames/Get-PingTimes/internal/latency"
	"github.com/cadencejames/Get-PingTimes/internal/table"
)

// DefaultDays is the trailing window width in day columns.
const DefaultDays = 35

// Projection is one derived window: truncated header plus truncated rows,
// never persisted. All cells are copies; projecting cannot mutate the table.
type Projection struct {
	Header []string
	Rows   [][]string
}

// Projector derives trailing windows of a fixed width.
type Projector struct {
	// Days caps the day cells kept per row.
	Days int

	// Skip holds decommissioned site names whose rows are dropped from the
	// projection entirely.
	Skip map[string]struct{}
}

// New returns a Projector keeping days trailing day cells per row.
func New(days int, skip map[string]struct{}) *Projector {
	if days < 1 {
		days = DefaultDays
	}
	return &Projector{Days: days, Skip: skip}
}

// Project derives the window of tbl. Data rows get a fresh average over
// their windowed cells, with the unreachable sentinel when none is numeric.
// Metadata rows keep their average slot as-is.
func (p *Projector) Project(tbl *table.Table) *Projection {
	proj := &Projection{Header: p.truncate(tbl.Header)}
	for _, row := range tbl.Rows {
		if _, dropped := p.Skip[row.Name()]; dropped {
			continue
		}
		cells := p.truncate(row.Cells)
		if row.Kind == table.Data {
			if avg, ok := latency.Average(cells[table.ColDayStart:]); ok {
				cells[table.ColAverage] = avg
			} else {
				cells[table.ColAverage] = string(latency.Unreachable)
			}
		}
		proj.Rows = append(proj.Rows, cells)
	}
	return proj
}

// truncate copies the first three cells plus the trailing Days day cells.
func (p *Projector) truncate(cells []string) []string {
	day := cells[table.ColDayStart:]
	if len(day) > p.Days {
		day = day[len(day)-p.Days:]
	}
	out := make([]string, 0, table.ColDayStart+len(day))
	out = append(out, cells[:table.ColDayStart]...)
	return append(out, day...)
}
