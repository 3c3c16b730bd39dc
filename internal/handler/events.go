// This file defines the realtime event stream endpoint.  Clients
// consume the in-process hub over Server-Sent Events: seat updates,
// booking lifecycle changes and notifications arrive as they are
// published.  The stream is advisory; clients must still revalidate
// seat state when booking.

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avikr/exam-bus-booking/internal/hub"
)

// EventsHandler exposes the hub to HTTP clients.
type EventsHandler struct {
	Hub *hub.Hub
}

func NewEventsHandler(h *hub.Hub) *EventsHandler {
	if h == nil {
		panic("nil hub passed to NewEventsHandler")
	}
	return &EventsHandler{Hub: h}
}

// heartbeat keeps intermediaries from closing an idle stream.
const heartbeatInterval = 25 * time.Second

// Stream handles GET /v1/events.  It subscribes the connection to the
// hub and writes each event as an SSE frame until the client
// disconnects.  Slow consumers miss events rather than stall the hub.
func (h *EventsHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	sub := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(sub)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			flusher.Flush()
		case ev, open := <-sub.C:
			if !open {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
