package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/exam-bus-booking/internal/hub"
)

func TestEventStreamDeliversPublishedEvents(t *testing.T) {
	h := hub.New()
	handler := NewEventsHandler(h)

	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 7, "USER")

	done := make(chan error, 1)
	go func() { done <- handler.Stream(c) }()

	// Wait for the stream to register with the hub before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	h.Publish(hub.EventSeatUpdate, map[string]interface{}{"bus_id": 3})

	// Give the stream time to flush the frame, then disconnect.  The
	// recorder body is only inspected after the handler returns.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on disconnect")
	}

	body := rec.Body.String()
	assert.Contains(t, body, "event: seatUpdate")
	assert.Contains(t, body, `"bus_id":3`)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 0, h.Subscribers())
}
