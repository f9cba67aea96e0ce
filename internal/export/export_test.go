package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cadencejames/Get-PingTimes/internal/latency"
	"github.com/cadencejames/Get-PingTimes/internal/sites"
	"github.com/cadencejames/Get-PingTimes/internal/window"
)

var testPointIDs = []string{"arouter", "brouter"}

func TestWriteResults(t *testing.T) {
	merged := []sites.MergedSample{
		{
			Site:   sites.Site{IP: "10.0.0.1", Name: "SITEA", Code: "SA1", Tier: "1", Point: "arouter"},
			Values: map[string]latency.Value{"arouter": "5", "brouter": "7"},
		},
		{
			Site:   sites.Site{IP: "10.0.0.2", Name: "SITEA", Code: "SA1", Tier: "1", Point: "brouter"},
			Values: map[string]latency.Value{"arouter": "x", "brouter": "N/A"},
		},
	}
	path := filepath.Join(t.TempDir(), "results.csv")

	if err := WriteResults(path, testPointIDs, merged); err != nil {
		t.Fatalf("WriteResults(): %v", err)
	}

	got := readFile(t, path)
	want := "tier,sitename,sitecode,ip,arouter,brouter\n" +
		"1,SITEA,SA1,10.0.0.1,5,7\n" +
		"1,SITEA,SA1,10.0.0.2,x,N/A\n"
	if got != want {
		t.Errorf("results file:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteResults_NoMergedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	if err := WriteResults(path, testPointIDs, nil); err != nil {
		t.Fatalf("WriteResults(): %v", err)
	}

	if got := readFile(t, path); got != "tier,sitename,sitecode,ip,arouter,brouter\n" {
		t.Errorf("empty-run results file: %q", got)
	}
}

func TestScript_GoldenBytes(t *testing.T) {
	proj := &window.Projection{
		Header: []string{"sitename", "tier", "average", "06-Mar-26", "07-Mar-26"},
		Rows: [][]string{
			{"SITEA", "1", "14", "11", "13", "15", "17"},
			{"Backup sites", "M", "", "", "", "", ""},
			{"SITEB", "2", "x", "x", "x", "x", "x"},
		},
	}

	got := string(Script(proj))

	want := "// The raw CSV data as a string\n" +
		"const csvData = `\n" +
		"sitename,tier,average,06-Mar-26,07-Mar-26\n" +
		"SITEA,1,14,11,13,15,17\n" +
		"Backup sites,M,,,,,\n" +
		"SITEB,2,x,x,x,x,x\n" +
		"\n`;"
	if got != want {
		t.Errorf("script block:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteScript(t *testing.T) {
	proj := &window.Projection{
		Header: []string{"sitename", "tier", "average"},
		Rows:   [][]string{{"SITEA", "1", "x"}},
	}
	path := filepath.Join(t.TempDir(), "csvdata.js")

	if err := WriteScript(path, proj); err != nil {
		t.Fatalf("WriteScript(): %v", err)
	}

	if got := readFile(t, path); got != string(Script(proj)) {
		t.Errorf("file bytes differ from Script() output: %q", got)
	}
}

// readFile returns path's contents, failing the test on error.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
