package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SubscribeEvents handles GET /screens/{name}/events as a Server-Sent Events stream.
// Each event carries one JSON encoded screen.Update.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	updates := s.Screens.Subscribe(ctx, name)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE client connected", "screen", name)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("SSE client disconnected", "screen", name)
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				s.logger.Error("SSE encode failed", "screen", name, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", u.Kind, data)
			flusher.Flush()
		}
	}
}
