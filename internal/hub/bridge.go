package hub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// broadcastChannel is the Redis pub/sub channel shared by all server
// instances.  Events published on one instance are re-injected into
// the local hubs of the others so every connected client sees the same
// advisory stream regardless of which instance it landed on.
const broadcastChannel = "events.broadcast"

// wireEvent is the cross-instance envelope.  Instance identifies the
// origin so a bridge can skip events it published itself.
type wireEvent struct {
	Instance string          `json:"instance"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	At       time.Time       `json:"at"`
}

// Bridge mirrors local hub publishes onto a shared Redis channel and
// feeds remote publishes back into the local hub.  When rdb is nil the
// bridge degrades to local-only fan-out, matching a single-instance
// deployment.
type Bridge struct {
	hub      *Hub
	rdb      *redis.Client
	instance string
}

// NewBridge wraps a hub with cross-instance mirroring.
func NewBridge(h *Hub, rdb *redis.Client) *Bridge {
	return &Bridge{hub: h, rdb: rdb, instance: randomInstanceID()}
}

// Publish fans the event out locally and, when Redis is configured,
// mirrors it to the broadcast channel.  Mirror failures are logged and
// swallowed; they must never fail the originating request.
func (b *Bridge) Publish(eventType string, payload interface{}) {
	b.hub.Publish(eventType, payload)
	if b.rdb == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("hub-bridge: marshal payload failed: %v", err)
		return
	}
	msg, err := json.Marshal(wireEvent{
		Instance: b.instance,
		Type:     eventType,
		Payload:  raw,
		At:       time.Now().UTC(),
	})
	if err != nil {
		log.Printf("hub-bridge: marshal envelope failed: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.rdb.Publish(ctx, broadcastChannel, msg).Err(); err != nil {
		log.Printf("hub-bridge: redis publish failed: %v", err)
	}
}

// Run subscribes to the broadcast channel and re-injects events
// published by other instances into the local hub.  It blocks until
// the context is cancelled and is intended to run in its own
// goroutine.  With no Redis client it returns immediately.
func (b *Bridge) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}
	sub := b.rdb.Subscribe(ctx, broadcastChannel)
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("hub-bridge: bad broadcast payload: %v", err)
				continue
			}
			if ev.Instance == b.instance {
				continue
			}
			b.hub.Publish(ev.Type, ev.Payload)
		}
	}
}

func randomInstanceID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "bridge"
	}
	return hex.EncodeToString(buf)
}
