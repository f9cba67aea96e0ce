package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ClassifiesRows(t *testing.T) {
	tbl := loadFromString(t, strings.Join([]string{
		"sitename,tier,average,01-Jan-26,02-Jan-26",
		"SITEA,1,12,11,13,10,14",
		"Backup sites,M,,,",
		"SITEB,2,x,x,x,x,x",
		"sitegroup-east,3,,,",
	}, "\n"))

	if len(tbl.Rows) != 4 {
		t.Fatalf("rows: got %d, want 4", len(tbl.Rows))
	}
	wantKinds := []RowKind{Data, Metadata, Data, Metadata}
	for i, want := range wantKinds {
		if tbl.Rows[i].Kind != want {
			t.Errorf("row %d (%s): kind %v, want %v", i, tbl.Rows[i].Name(), tbl.Rows[i].Kind, want)
		}
	}
}

func TestLoad_RaggedRowsAccepted(t *testing.T) {
	// Data rows carry two day cells per date label, so they are wider than
	// the header.
	tbl := loadFromString(t, strings.Join([]string{
		"sitename,tier,average,01-Jan-26",
		"SITEA,1,12,11,13",
	}, "\n"))

	if got := tbl.Rows[0].DayCells(); len(got) != 2 {
		t.Fatalf("day cells: got %v, want 2 cells", got)
	}
}

func TestLoad_StructuralFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "short header", content: "sitename,tier\n"},
		{name: "short row", content: "sitename,tier,average\nSITEA,1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "alldata.csv")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatalf("write temp table: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected structural error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLookup(t *testing.T) {
	tbl := loadFromString(t, strings.Join([]string{
		"sitename,tier,average,01-Jan-26",
		"SITEA,1,12,11,13",
		"SITEB,2,7,6,8",
	}, "\n"))

	row, ok := tbl.Lookup("SITEB")
	if !ok {
		t.Fatal("Lookup(SITEB) not found")
	}
	if row.Cells[ColAverage] != "7" {
		t.Errorf("SITEB average: got %q", row.Cells[ColAverage])
	}
	if _, ok := tbl.Lookup("SITEZ"); ok {
		t.Error("Lookup(SITEZ) found a row in a table without one")
	}

	// The pointer aliases the table, so appends through it must be visible
	// on the next read of the table.
	row.Cells = append(row.Cells, "9")
	again, _ := tbl.Lookup("SITEB")
	if got := len(again.DayCells()); got != 3 {
		t.Errorf("day cells after append: got %d, want 3", got)
	}
}

func TestLookup_DuplicateNameMatchesFirst(t *testing.T) {
	tbl := loadFromString(t, strings.Join([]string{
		"sitename,tier,average,01-Jan-26",
		"SITEA,1,first,1",
		"SITEA,1,second,2",
	}, "\n"))

	row, ok := tbl.Lookup("SITEA")
	if !ok {
		t.Fatal("Lookup(SITEA) not found")
	}
	if row.Cells[ColAverage] != "first" {
		t.Errorf("matched row average: got %q, want the first occurrence", row.Cells[ColAverage])
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alldata.csv")
	content := strings.Join([]string{
		"sitename,tier,average,01-Jan-26",
		"SITEA,1,12,11,13",
		"Backup sites,M,,,",
	}, "\n")
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		t.Fatalf("write temp table: %v", err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	tbl.Header = append(tbl.Header, "02-Jan-26")
	row, _ := tbl.Lookup("SITEA")
	row.Cells = append(row.Cells, "15", "17")
	if err := tbl.Save(path); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Header) != 5 {
		t.Errorf("reloaded header: got %d cells, want 5", len(reloaded.Header))
	}
	again, _ := reloaded.Lookup("SITEA")
	if got := strings.Join(again.DayCells(), ","); got != "11,13,15,17" {
		t.Errorf("reloaded day cells: got %q", got)
	}

	// The rename must leave no temp artifacts behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

// loadFromString writes content to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alldata.csv")
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		t.Fatalf("write temp table: %v", err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return tbl
}
