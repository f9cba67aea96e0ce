package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cadencejames/Get-PingTimes/internal/config"
	"github.com/cadencejames/Get-PingTimes/internal/latency"
	"github.com/cadencejames/Get-PingTimes/internal/metrics"
	"github.com/cadencejames/Get-PingTimes/internal/table"
)

var runDay = time.Date(2026, time.March, 7, 6, 30, 0, 0, time.UTC) // "07-Mar-26"

// fakeProber serves canned values keyed "pointID/target". Unknown pairs
// come back as the no-data sentinel, like an unparseable transcript would.
type fakeProber struct {
	values map[string]latency.Value
}

func (f *fakeProber) Probe(_ context.Context, point config.Point, target string) (latency.Value, error) {
	if v, ok := f.values[point.ID+"/"+target]; ok {
		return v, nil
	}
	return latency.NoData, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Monitor: config.MonitorConfig{
			Points: []config.Point{
				{ID: "arouter", Host: "192.168.1.1", Source: "192.168.1.1"},
				{ID: "brouter", Host: "192.168.2.1", Source: "192.168.2.1"},
			},
			Probe: config.ProbeConfig{TimeoutSeconds: 1, Repeat: 2, Workers: 4},
			Files: config.FilesConfig{
				Sites:   filepath.Join(dir, "sites.csv"),
				History: filepath.Join(dir, "alldata.csv"),
				Results: filepath.Join(dir, "results.csv"),
				Export:  filepath.Join(dir, "csvdata.js"),
			},
			WindowDays: 35,
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

const seedSites = "ip,sitename,sitecode,tier\n" +
	"10.0.0.1,SITEA,SA1,1\n" +
	"10.0.0.2,SITEA,SA1,1\n" +
	"10.0.1.1,SITEB,SB1,2\n" +
	"10.0.1.2,SITEB,SB1,2\n"

const seedHistory = "Site Name,Marker,Average,01-Mar-26\n" +
	"SITEA,,4,3,5\n" +
	"SITEB,,10,9,11\n" +
	"Backup sites,M,,\n"

func newPipeline(cfg *config.Config, fp *fakeProber) *Pipeline {
	p := New(cfg, fp, metrics.New())
	p.Now = func() time.Time { return runDay }
	return p
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Monitor.Files.Sites, seedSites)
	writeFile(t, cfg.Monitor.Files.History, seedHistory)

	fp := &fakeProber{values: map[string]latency.Value{
		"arouter/10.0.0.1": "5", "brouter/10.0.0.1": "9",
		"arouter/10.0.0.2": "6", "brouter/10.0.0.2": "7",
		"arouter/10.0.1.1": "11", "brouter/10.0.1.1": "15",
		"arouter/10.0.1.2": "13", "brouter/10.0.1.2": "17",
	}}

	report, proj := newPipeline(cfg, fp).Run(context.Background())

	if len(report.FailedPhases) != 0 {
		t.Fatalf("failed phases = %v, want none", report.FailedPhases)
	}
	if report.RunID == "" {
		t.Error("run id is empty")
	}
	if report.Hosts != 4 || report.Merged != 4 {
		t.Errorf("hosts = %d, merged = %d, want 4 and 4", report.Hosts, report.Merged)
	}
	if report.Stats.DateLabel != "07-Mar-26" {
		t.Errorf("date label = %q, want 07-Mar-26", report.Stats.DateLabel)
	}
	if report.Stats.RowsAppended != 2 || report.Stats.CellsAppended != 4 {
		t.Errorf("rows appended = %d, cells = %d, want 2 and 4",
			report.Stats.RowsAppended, report.Stats.CellsAppended)
	}
	if report.WindowRows != 3 {
		t.Errorf("window rows = %d, want 3", report.WindowRows)
	}

	wantResults := "tier,sitename,sitecode,ip,arouter,brouter\n" +
		"1,SITEA,SA1,10.0.0.1,5,9\n" +
		"1,SITEA,SA1,10.0.0.2,6,7\n" +
		"2,SITEB,SB1,10.0.1.1,11,15\n" +
		"2,SITEB,SB1,10.0.1.2,13,17\n"
	if got := readFile(t, cfg.Monitor.Files.Results); got != wantResults {
		t.Errorf("results file:\n%s\nwant:\n%s", got, wantResults)
	}

	wantHistory := "Site Name,Marker,Average,01-Mar-26,07-Mar-26\n" +
		"SITEA,,5,3,5,5,7\n" +
		"SITEB,,12,9,11,11,17\n" +
		"Backup sites,M,,\n"
	if got := readFile(t, cfg.Monitor.Files.History); got != wantHistory {
		t.Errorf("history file:\n%s\nwant:\n%s", got, wantHistory)
	}

	if proj == nil {
		t.Fatal("projection is nil")
	}
	if len(proj.Rows) != 3 {
		t.Fatalf("projection rows = %d, want 3", len(proj.Rows))
	}
	export := readFile(t, cfg.Monitor.Files.Export)
	if !strings.Contains(export, "SITEA,,5,3,5,5,7") {
		t.Errorf("export missing refreshed SITEA row:\n%s", export)
	}
}

func TestRun_SampleFailureStillProjectsWindow(t *testing.T) {
	cfg := testConfig(t)
	// No sites file at all; the history from previous runs is intact.
	writeFile(t, cfg.Monitor.Files.History, seedHistory)

	report, proj := newPipeline(cfg, &fakeProber{}).Run(context.Background())

	if len(report.FailedPhases) != 1 || report.FailedPhases[0] != PhaseSample {
		t.Fatalf("failed phases = %v, want [sample]", report.FailedPhases)
	}
	if report.Hosts != 0 || report.Merged != 0 || report.Stats.RowsAppended != 0 {
		t.Errorf("report carries sample state: %+v", report)
	}

	if _, err := os.Stat(cfg.Monitor.Files.Results); !os.IsNotExist(err) {
		t.Errorf("results file should not exist, stat err = %v", err)
	}
	tbl, err := table.Load(cfg.Monitor.Files.History)
	if err != nil {
		t.Fatalf("reload history: %v", err)
	}
	if len(tbl.Header) != 4 {
		t.Errorf("history header = %v, want untouched 4 columns", tbl.Header)
	}

	if proj == nil {
		t.Fatal("projection is nil, want one from the stale history")
	}
	if report.WindowRows != 3 {
		t.Errorf("window rows = %d, want 3", report.WindowRows)
	}
	if _, err := os.Stat(cfg.Monitor.Files.Export); err != nil {
		t.Errorf("export file: %v", err)
	}
}

func TestRun_MissingHistoryFailsAggregateAndWindow(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Monitor.Files.Sites, seedSites)
	// No history file: both table-backed phases fail, sampling still lands.

	report, proj := newPipeline(cfg, &fakeProber{}).Run(context.Background())

	want := []string{PhaseAggregate, PhaseWindow}
	if len(report.FailedPhases) != len(want) {
		t.Fatalf("failed phases = %v, want %v", report.FailedPhases, want)
	}
	for i, phase := range want {
		if report.FailedPhases[i] != phase {
			t.Fatalf("failed phases = %v, want %v", report.FailedPhases, want)
		}
	}

	if _, err := os.Stat(cfg.Monitor.Files.Results); err != nil {
		t.Errorf("results file should exist: %v", err)
	}
	if proj != nil {
		t.Errorf("projection = %+v, want nil", proj)
	}
	if report.WindowRows != 0 {
		t.Errorf("window rows = %d, want 0", report.WindowRows)
	}
}
