package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dstepanov/hwpolicy/internal/snapshot"
	"github.com/dstepanov/hwpolicy/internal/telemetry"
)

const heartbeatInterval = 15 * time.Second

// handleEvents streams policy-change notifications as Server-Sent Events.
// Clients get an init event with the current ETag, then an update event per
// snapshot swap and periodic heartbeat comments.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, r, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, cancel := snapshot.Subscribe()
	defer cancel()

	telemetry.SSEClients.Inc()
	defer telemetry.SSEClients.Dec()

	etag := ""
	if snap := snapshot.Load(); snap != nil {
		etag = snap.ETag
	}
	fmt.Fprintf(w, "event: init\ndata: {\"etag\":%q}\n\n", etag)
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case etag := <-ch:
			fmt.Fprintf(w, "event: update\ndata: {\"etag\":%q}\n\n", etag)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
