// Package events fans ledger change events out to in-process subscribers.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
)

// DefaultBufferSize is the per-subscriber queue length.
const DefaultBufferSize = 64

type subscriber struct {
	filter domain.LedgerFilter
	ch     chan domain.LedgerEvent
}

// Broker delivers published events to every subscriber whose filter matches.
// A subscriber that does not keep up loses events instead of blocking writers.
type Broker struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	bufferSize  int
	closed      bool
}

// NewBroker creates a broker. bufferSize <= 0 selects DefaultBufferSize.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broker{
		subscribers: make(map[*subscriber]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a subscriber until ctx is done, then closes its channel.
func (b *Broker) Subscribe(ctx context.Context, filter domain.LedgerFilter) <-chan domain.LedgerEvent {
	sub := &subscriber{filter: filter, ch: make(chan domain.LedgerEvent, b.bufferSize)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(sub)
	}()
	return sub.ch
}

func (b *Broker) remove(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub.ch)
	}
}

// Publish sends ev to matching subscribers without blocking. It returns the
// number of subscribers that received it.
func (b *Broker) Publish(ctx context.Context, ev domain.LedgerEvent) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for sub := range b.subscribers {
		if !sub.filter.MatchesEvent(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
			delivered++
		default:
			middleware.GetLoggerFromCtx(ctx).WarnContext(ctx, "Dropping ledger event for slow subscriber",
				slog.String("entry_id", ev.EntryID),
				slog.String("type", string(ev.Type)))
		}
	}
	return delivered
}

// Len returns the number of active subscribers.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close ends every subscription. Later subscriptions receive a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for sub := range b.subscribers {
		delete(b.subscribers, sub)
		close(sub.ch)
	}
}
