package booking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Holders of the same key must run one at a time; the counter would
// drift under interleaving.
func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	const goroutines = 32
	const iterations = 200

	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				km.Lock("42|2026-09-01")
				counter++
				km.Unlock("42|2026-09-01")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, goroutines*iterations, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("1|2026-09-01")

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		km.Lock("2|2026-09-01")
		km.Unlock("2|2026-09-01")
		close(done)
	}()
	<-done

	km.Unlock("1|2026-09-01")
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("a")
	km.Unlock("a")
	km.Lock("b")
	km.Unlock("b")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
