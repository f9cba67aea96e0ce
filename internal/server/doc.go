// Package server exposes the daemon's HTTP surface.
//
// A Store holds the latest run's publication: the window projection, the
// script-embeddable export bytes and the run report. Handler serves it as
// GET /api/v1/window, GET /api/v1/health and GET /export/csvdata.js, the
// latter byte-identical to the file artifact. The Hub pushes the refreshed
// window to WebSocket clients whenever a run publishes; clients also get
// the current window immediately on connect.
//
// Route assembly happens in cmd/pingtimes, which mounts the Handler, the
// Hub at /ws/stream and the metrics registry at /metrics on one mux.
package server
