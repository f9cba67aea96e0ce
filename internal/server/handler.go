package server

import (
	"encoding/json"
	"net/http"
)

// Handler serves the REST endpoints and the script export from the store.
type Handler struct {
	store *Store
	mux   *http.ServeMux
}

// NewHandler creates a Handler wired to the given store and registers its
// routes.
func NewHandler(st *Store) http.Handler {
	h := &Handler{store: st, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/window", h.window)
	h.mux.HandleFunc("/export/csvdata.js", h.script)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// health serves GET /api/v1/health, the last run's summary.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pub, _ := h.store.Latest()
	jsonResp(w, http.StatusOK, buildHealthResponse(pub))
}

// window serves GET /api/v1/window, the latest window projection as JSON.
func (h *Handler) window(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pub, ok := h.store.Latest()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no run published yet")
		return
	}
	jsonResp(w, http.StatusOK, buildWindowResponse(pub))
}

// script serves GET /export/csvdata.js, the script-embeddable window block,
// byte-identical to the file artifact.
func (h *Handler) script(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pub, ok := h.store.Latest()
	if !ok {
		jsonErr(w, http.StatusNotFound, "no run published yet")
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(pub.Script) //nolint:errcheck
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
