// Package event carries the domain events that keep denormalized state in
// sync. Review writes publish ReviewChanged; the ratings service consumes
// it and recomputes the owning tour's aggregate.
package event

import (
	"context"
	"log"
	"sync"
)

// ReviewChanged signals that the review set of a tour was mutated
// (created, updated or deleted).
type ReviewChanged struct {
	TourID int
}

// ReviewChangedHandler reacts to a ReviewChanged event
type ReviewChangedHandler func(ctx context.Context, e ReviewChanged) error

// Bus dispatches domain events to registered handlers. Dispatch is
// synchronous: Publish returns after every handler has run, so the
// recompute is causally ordered after the triggering write.
type Bus struct {
	mu       sync.RWMutex
	handlers []ReviewChangedHandler
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeReviewChanged registers a handler for ReviewChanged events
func (b *Bus) SubscribeReviewChanged(h ReviewChangedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// PublishReviewChanged delivers the event to every handler. Handler
// failures are logged, not propagated: the review write already
// succeeded, and the aggregate is eventually consistent by contract.
func (b *Bus) PublishReviewChanged(ctx context.Context, e ReviewChanged) {
	b.mu.RLock()
	handlers := make([]ReviewChangedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			log.Printf("ERROR: ReviewChanged handler failed for tour %d: %v", e.TourID, err)
		}
	}
}
