package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/claude/fitcount/internal/tracker"
)

// handleSessionEvents streams a server-sent event for every tracker
// operation. The current snapshot is sent first.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	ch, stop := s.tracker.Subscribe()
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snap, err := s.tracker.Snapshot()
	if err != nil && !errors.Is(err, tracker.ErrNoSession) {
		s.log.Error("session events snapshot", "error", err)
		return
	}
	fmt.Fprintf(w, "event: status\ndata: %s\n\n", mustJSON(snap))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, mustJSON(evt))
			flusher.Flush()
		}
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{}`
	}
	return string(b)
}
