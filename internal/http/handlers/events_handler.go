// Server-sent events endpoint.
//
//   - GET /api/events
//
// Streams the notification hub to a dashboard observer. Each hub event
// becomes one SSE frame; the stream ends when the client disconnects.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Events handles GET /api/events.
func (h *Handlers) Events(c *gin.Context) {
	if h.deps.Hub == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "event stream not available")
		return
	}

	id, ch := h.deps.Hub.Subscribe()
	defer h.deps.Hub.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, open := <-ch:
			if !open {
				return false
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				log.Warn().Err(err).Str("event", ev.Name).Msg("sse: payload marshal failed, frame dropped")
				return true
			}
			c.SSEvent(ev.Name, string(data))
			return true
		}
	})
}
