package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
)

// sortJobs orders jobs by start time, then ID.
func sortJobs(jobs []*Job) {
	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].StartTime.Equal(jobs[k].StartTime) {
			return jobs[i].StartTime.Before(jobs[k].StartTime)
		}
		return jobs[i].ID < jobs[k].ID
	})
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
