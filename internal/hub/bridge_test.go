package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Without Redis the bridge is a plain local publisher.
func TestBridgeLocalOnly(t *testing.T) {
	h := New()
	b := NewBridge(h, nil)

	s := h.Subscribe()
	defer h.Unsubscribe(s)

	b.Publish(EventSeatUpdate, map[string]interface{}{"bus_id": 3})

	select {
	case ev := <-s.C:
		assert.Equal(t, EventSeatUpdate, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("local publish not delivered")
	}
}

func TestBridgeRunReturnsWithoutRedis(t *testing.T) {
	b := NewBridge(New(), nil)

	done := make(chan struct{})
	go func() {
		b.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately with no Redis client")
	}
}

func TestBridgeInstanceIDsDiffer(t *testing.T) {
	a := NewBridge(New(), nil)
	b := NewBridge(New(), nil)
	assert.NotEmpty(t, a.instance)
	assert.NotEqual(t, a.instance, b.instance)
}
