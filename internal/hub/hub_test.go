package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	h := New()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish(EventSeatUpdate, map[string]interface{}{"bus_id": 3})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.C:
			assert.Equal(t, EventSeatUpdate, ev.Type)
			assert.False(t, ev.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

// Publishing with no one connected must not block or panic; bookings
// succeed whether or not anyone is watching.
func TestPublishWithoutSubscribers(t *testing.T) {
	h := New()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(EventBookingUpdate, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
	assert.Equal(t, 0, h.Subscribers())
}

// A slow subscriber misses events instead of stalling the publisher.
func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	h := New()
	s := h.Subscribe()
	defer h.Unsubscribe(s)

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(EventNotification, i)
	}

	received := 0
	for {
		select {
		case <-s.C:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New()
	s := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	h.Unsubscribe(s)
	assert.Equal(t, 0, h.Subscribers())

	_, open := <-s.C
	assert.False(t, open)

	// Repeat and nil unsubscribes are no-ops.
	h.Unsubscribe(s)
	h.Unsubscribe(nil)
}

func TestSubscribeSeesOnlyLaterEvents(t *testing.T) {
	h := New()
	h.Publish(EventSeatUpdate, "before")

	s := h.Subscribe()
	defer h.Unsubscribe(s)

	h.Publish(EventSeatUpdate, "after")
	ev := <-s.C
	assert.Equal(t, "after", ev.Payload)
	assert.Empty(t, s.C)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(EventBookingUpdate, j)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := h.Subscribe()
				h.Unsubscribe(s)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers())
}
