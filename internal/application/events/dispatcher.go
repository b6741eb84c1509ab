// Package events dispatches domain events to in-process subscribers
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/alchemorsel/mealplanner/pkg/logger"
	"go.uber.org/zap"
)

// Wildcard subscribes a handler to every event
const Wildcard = "*"

var _ shared.EventPublisher = (*Dispatcher)(nil)

// Dispatcher is a synchronous EventPublisher. Handlers run in subscription
// order on the publishing goroutine; a failing handler does not stop the
// others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher without subscribers
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger.Named("events"),
	}
}

// Subscribe registers handler for the named event, or for all events with
// Wildcard
func (d *Dispatcher) Subscribe(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// Publish hands each event to its subscribers
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	log := logger.FromContext(ctx, d.logger)

	var errs []error
	for _, event := range events {
		d.mu.RLock()
		handlers := append(append([]shared.EventHandler{}, d.handlers[event.EventName()]...), d.handlers[Wildcard]...)
		d.mu.RUnlock()

		log.Debug("Domain event",
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt()),
			zap.Int("handlers", len(handlers)))

		for _, h := range handlers {
			if err := h(ctx, event); err != nil {
				log.Warn("Event handler failed", zap.String("event", event.EventName()), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", event.EventName(), err))
			}
		}
	}
	return errors.Join(errs...)
}
