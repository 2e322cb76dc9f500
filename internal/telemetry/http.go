package telemetry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
)

const defaultListLimit = 100

// Register mounts the event log and metrics endpoints on mux.
func (s *Store) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/metrics", s.handleMetrics)
}

func (s *Store) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := defaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_limit"})
				return
			}
			limit = n
		}
		recent := s.Recent(limit)
		WriteJSON(w, http.StatusOK, map[string]any{
			"count":  len(recent),
			"events": recent,
		})
	default:
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
	}
}

func (s *Store) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	summary := s.Summary()
	_, _ = fmt.Fprintln(w, "# HELP thumbrace_race_events_total Total race events recorded")
	_, _ = fmt.Fprintln(w, "# TYPE thumbrace_race_events_total counter")
	_, _ = fmt.Fprintf(w, "thumbrace_race_events_total %d\n", summary.Total)

	keys := make([]string, 0, len(summary.ByType))
	for k := range summary.ByType {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, typ := range keys {
		_, _ = fmt.Fprintf(w, "thumbrace_race_events_by_type{event_type=%q} %d\n", typ, summary.ByType[typ])
	}
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
