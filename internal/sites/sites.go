package sites

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cadencejames/Get-PingTimes/internal/latency"
	"github.com/cadencejames/Get-PingTimes/internal/probe"
)

// Site is one monitored host: network identity plus the observation point
// whose history row its samples feed. Static, loaded once per run.
type Site struct {
	IP    string
	Name  string
	Code  string
	Tier  string
	Point string
}

// MergedSample joins one host's measurements with its site identity.
type MergedSample struct {
	Site   Site
	Values map[string]latency.Value
}

// Load reads the sites file and binds every entry to an observation point.
// Required columns: ip, sitename, sitecode, tier. The optional point column
// overrides the implicit occurrence-order binding for that entry; the
// occurrence counter still advances for every entry of a site name, so
// mixing explicit and implicit entries for one site must not claim the same
// point twice.
func Load(path string, pointIDs []string) ([]Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sites file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read sites header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"ip", "sitename", "sitecode", "tier"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("sites file %s: missing column %q", path, required)
		}
	}
	pointCol, hasPointCol := col["point"]

	known := make(map[string]bool, len(pointIDs))
	for _, id := range pointIDs {
		known[id] = true
	}

	var loaded []Site
	occurrence := map[string]int{} // site name -> entries seen so far
	bound := map[[2]string]bool{}  // (site, point) slots already claimed
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sites file %s: %w", path, err)
	}
	for _, rec := range records {
		s := Site{
			IP:   rec[col["ip"]],
			Name: rec[col["sitename"]],
			Code: rec[col["sitecode"]],
			Tier: rec[col["tier"]],
		}
		k := occurrence[s.Name]
		occurrence[s.Name] = k + 1

		if hasPointCol && rec[pointCol] != "" {
			s.Point = rec[pointCol]
			if !known[s.Point] {
				return nil, fmt.Errorf("sites file %s: %s/%s names unknown point %q", path, s.Name, s.IP, s.Point)
			}
		} else {
			if k >= len(pointIDs) {
				return nil, fmt.Errorf("sites file %s: %q occurs %d times but only %d observation points are configured",
					path, s.Name, k+1, len(pointIDs))
			}
			s.Point = pointIDs[k]
		}

		slot := [2]string{s.Name, s.Point}
		if bound[slot] {
			return nil, fmt.Errorf("sites file %s: %s/%s already bound", path, s.Name, s.Point)
		}
		bound[slot] = true
		loaded = append(loaded, s)
	}
	return loaded, nil
}

// IPs returns every site's host address in file order, the probe target list.
func IPs(all []Site) []string {
	ips := make([]string, len(all))
	for i, s := range all {
		ips[i] = s.IP
	}
	return ips
}

// Merge joins results with sites by host address. Sites without a sample and
// samples without a site yield no merged record; both are logged and neither
// is an error. A nil log falls back to the process default logger.
func Merge(all []Site, results []probe.Result, log *slog.Logger) []MergedSample {
	if log == nil {
		log = slog.Default()
	}
	byIP := make(map[string]probe.Result, len(results))
	for _, r := range results {
		byIP[r.IP] = r
	}

	merged := make([]MergedSample, 0, len(all))
	matched := make(map[string]bool, len(results))
	for _, s := range all {
		r, ok := byIP[s.IP]
		if !ok {
			log.Warn("sites: no sample for site", "site", s.Name, "ip", s.IP, "point", s.Point)
			continue
		}
		matched[s.IP] = true
		merged = append(merged, MergedSample{Site: s, Values: r.Values})
	}
	for _, r := range results {
		if !matched[r.IP] {
			log.Warn("sites: dropping sample for unknown host", "ip", r.IP)
		}
	}
	return merged
}
