// Package progress provides the in-process broadcast bus for download progress events
package progress

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"langpack-manager/pkg/models"
)

// SubscriberBuffer is the channel buffer for each subscriber. Publishes to a
// full subscriber are dropped, never blocked on; progress events are
// snapshots, so a dropped event is superseded by the next one.
const SubscriberBuffer = 64

// Bus fans out DownloadProgress events to all subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan models.DownloadProgress
	nextID      int
	closed      bool
	dropped     atomic.Int64
	logger      *slog.Logger
}

// NewBus creates a progress bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]chan models.DownloadProgress),
		logger:      slog.Default(),
	}
}

// Subscribe registers a new subscriber and returns its event channel plus an
// unsubscribe function. The channel is closed on unsubscribe or bus close.
func (b *Bus) Subscribe() (<-chan models.DownloadProgress, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan models.DownloadProgress)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan models.DownloadProgress, SubscriberBuffer)
	b.subscribers[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(sub)
			}
		})
	}

	return ch, unsubscribe
}

// Publish delivers a progress snapshot to every subscriber without blocking.
func (b *Bus) Publish(p models.DownloadProgress) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- p:
		default:
			if n := b.dropped.Add(1); n%100 == 1 {
				b.logger.Warn("Dropping progress events for slow subscriber",
					"pack_id", p.PackID, "dropped_total", n)
			}
		}
	}
}

// Dropped returns the total number of events dropped on full subscribers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
