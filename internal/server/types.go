package server

import "time"

// WindowResponse is the JSON shape of GET /api/v1/window and of the hub's
// broadcast payload.
type WindowResponse struct {
	RunID       string     `json:"run_id"`
	GeneratedAt string     `json:"generated_at"`
	Header      []string   `json:"header"`
	Rows        [][]string `json:"rows"`
}

// HealthResponse is the JSON shape of GET /api/v1/health.
type HealthResponse struct {
	Status          string   `json:"status"` // idle, ok or degraded
	RunID           string   `json:"run_id,omitempty"`
	StartedAt       string   `json:"started_at,omitempty"`
	FinishedAt      string   `json:"finished_at,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	HostsProbed     int      `json:"hosts_probed"`
	MergedSamples   int      `json:"merged_samples"`
	RowsAppended    int      `json:"rows_appended"`
	WindowRows      int      `json:"window_rows"`
	FailedPhases    []string `json:"failed_phases,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// buildWindowResponse maps a publication to its window JSON representation.
func buildWindowResponse(pub *Publication) WindowResponse {
	return WindowResponse{
		RunID:       pub.Report.RunID,
		GeneratedAt: pub.Report.FinishedAt.UTC().Format(time.RFC3339),
		Header:      pub.Projection.Header,
		Rows:        pub.Projection.Rows,
	}
}

// buildHealthResponse maps a publication to the last-run summary. A nil pub
// reports the idle state.
func buildHealthResponse(pub *Publication) HealthResponse {
	if pub == nil {
		return HealthResponse{Status: "idle"}
	}
	r := pub.Report
	status := "ok"
	if len(r.FailedPhases) > 0 {
		status = "degraded"
	}
	return HealthResponse{
		Status:          status,
		RunID:           r.RunID,
		StartedAt:       r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:      r.FinishedAt.UTC().Format(time.RFC3339),
		DurationSeconds: r.FinishedAt.Sub(r.StartedAt).Seconds(),
		HostsProbed:     r.Hosts,
		MergedSamples:   r.Merged,
		RowsAppended:    r.Stats.RowsAppended,
		WindowRows:      r.WindowRows,
		FailedPhases:    r.FailedPhases,
	}
}
