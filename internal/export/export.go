package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/cadencejames/Get-PingTimes/internal/sites"
	"github.com/cadencejames/Get-PingTimes/internal/window"
)

// WriteResults writes this run's merged snapshot to path. Column order is
// tier, sitename, sitecode, ip, then one value column per observation point.
func WriteResults(path string, pointIDs []string, merged []sites.MergedSample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	w := csv.NewWriter(f)
	header := append([]string{"tier", "sitename", "sitecode", "ip"}, pointIDs...)
	records := make([][]string, 0, len(merged)+1)
	records = append(records, header)
	for _, m := range merged {
		rec := []string{m.Site.Tier, m.Site.Name, m.Site.Code, m.Site.IP}
		for _, pt := range pointIDs {
			rec = append(rec, string(m.Values[pt]))
		}
		records = append(records, rec)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write results file: %w", err)
	}
	return f.Close()
}

// Script renders proj as the script-embeddable data block: a comment line,
// a template-literal assignment, the window rows one per line, then a blank
// line closing the literal.
func Script(proj *window.Projection) []byte {
	var b strings.Builder
	b.WriteString("// The raw CSV data as a string\n")
	b.WriteString("const csvData = `\n")
	b.WriteString(strings.Join(proj.Header, ","))
	b.WriteString("\n")
	for _, row := range proj.Rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	b.WriteString("\n`;")
	return []byte(b.String())
}

// WriteScript writes the script-embeddable window block to path.
func WriteScript(path string, proj *window.Projection) error {
	if err := os.WriteFile(path, Script(proj), 0o644); err != nil {
		return fmt.Errorf("write script export: %w", err)
	}
	return nil
}
