package table

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Column positions shared by the history table and its window projection.
const (
	ColName     = 0
	ColMarker   = 1
	ColAverage  = 2
	ColDayStart = 3
)

// MetaMarker in the marker column tags a metadata row.
const MetaMarker = "M"

// RowKind classifies a row at load time.
type RowKind int

const (
	Data RowKind = iota
	Metadata
)

// Row is one table line: the raw cells plus the kind decided at load.
type Row struct {
	Kind  RowKind
	Cells []string
}

// Name returns the row key.
func (r Row) Name() string { return r.Cells[ColName] }

// DayCells returns the day-column slice of the row, empty when the row has
// no history yet. The returned slice aliases the row.
func (r Row) DayCells() []string {
	if len(r.Cells) <= ColDayStart {
		return nil
	}
	return r.Cells[ColDayStart:]
}

// Table is the in-memory image of the history file.
type Table struct {
	Header []string
	Rows   []Row

	index map[string]int // site name -> first row position
}

// New builds a table from raw records, classifying and indexing each row.
// Every row must carry at least the name, marker and average cells.
func New(header []string, rows [][]string) *Table {
	t := &Table{Header: header}
	for _, cells := range rows {
		t.Rows = append(t.Rows, Row{Kind: classify(cells), Cells: cells})
	}
	t.reindex()
	return t
}

// Load reads the history table from path. A missing or short header, or any
// row with fewer than 3 cells, is a structural failure. Rows wider than the
// header are expected: day columns outnumber date labels.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("history table %s: empty file", path)
	}
	if len(records[0]) < ColDayStart {
		return nil, fmt.Errorf("history table %s: header has %d cells, want at least %d", path, len(records[0]), ColDayStart)
	}

	t := &Table{Header: records[0], index: make(map[string]int)}
	for i, cells := range records[1:] {
		if len(cells) < ColDayStart {
			return nil, fmt.Errorf("history table %s: row %d has %d cells, want at least %d", path, i+2, len(cells), ColDayStart)
		}
		t.Rows = append(t.Rows, Row{Kind: classify(cells), Cells: cells})
	}
	t.reindex()
	return t, nil
}

// classify tags header-like and marker rows as metadata.
func classify(cells []string) RowKind {
	if cells[ColMarker] == MetaMarker || strings.Contains(cells[ColName], "site") {
		return Metadata
	}
	return Data
}

// reindex rebuilds the site-name index. The first row wins a duplicate name;
// later duplicates stay in the table but are never matched.
func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		name := row.Name()
		if _, seen := t.index[name]; seen {
			slog.Warn("table: duplicate site row, matching the first", "site", name, "row", i+2)
			continue
		}
		t.index[name] = i
	}
}

// Lookup returns the row keyed by site name. The pointer aliases the table;
// appending to its Cells is how a run adds day columns.
func (t *Table) Lookup(name string) (*Row, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.Rows[i], true
}

// Save rewrites the whole table to path through a temp file and rename.
func (t *Table) Save(path string) error {
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}

	w := csv.NewWriter(f)
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	for _, row := range t.Rows {
		records = append(records, row.Cells)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp table: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp table: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace history table: %w", err)
	}
	return nil
}
