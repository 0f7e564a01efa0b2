// Package events carries the notifications raised by the account and job
// services after a write commits. Subscribers such as the audit trail run
// after the response outcome is already decided.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler reacts to one job board event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans user and job events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe attaches handler to every listed event type.
	Subscribe(handler EventHandler, types ...EventType)
}

type inProcessDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a dispatcher that runs handlers on the
// publishing goroutine.
func NewInMemoryDispatcher() Dispatcher {
	return &inProcessDispatcher{handlers: make(map[EventType][]EventHandler)}
}

// Publish runs every handler subscribed to event.Type in subscription order.
// A failing handler does not stop the others; their errors are joined.
func (d *inProcessDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribed := append([]EventHandler(nil), d.handlers[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handle := range subscribed {
		if err := handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

func (d *inProcessDispatcher) Subscribe(handler EventHandler, types ...EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], handler)
	}
}
