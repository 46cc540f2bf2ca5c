package infrastructure

import (
	"context"
	"sync"

	"coinflip/domain/events"
	"coinflip/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// LocalHandler reacts to a committed event inside this process
type LocalHandler func(context.Context, events.Event) error

// LocalHandlerRegistry holds in-process handlers shared by every unit of work
type LocalHandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]LocalHandler
}

// NewLocalHandlerRegistry creates an empty registry
func NewLocalHandlerRegistry() *LocalHandlerRegistry {
	return &LocalHandlerRegistry{handlers: make(map[events.EventType][]LocalHandler)}
}

// Register adds a handler for the event type
func (r *LocalHandlerRegistry) Register(eventType events.EventType, handler LocalHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(r.handlers[eventType]),
	}).Info("Registered local event handler")
}

func (r *LocalHandlerRegistry) dispatch(ctx context.Context, event events.Event) {
	if r == nil {
		return
	}
	r.mu.RLock()
	handlers := r.handlers[event.Type()]
	r.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Local event handler failed")
		}
	}
}

// TransactionalPublisher holds events until flush, then hands them to local
// handlers and the real publisher. Events of a rolled back transaction are discarded.
type TransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	localHandlers *LocalHandlerRegistry
	pending       []events.Event
}

// NewTransactionalPublisher creates a new transactional publisher
func NewTransactionalPublisher(realPublisher interfaces.EventPublisher, localHandlers *LocalHandlerRegistry) *TransactionalPublisher {
	return &TransactionalPublisher{
		realPublisher: realPublisher,
		localHandlers: localHandlers,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without immediately publishing
func (p *TransactionalPublisher) Publish(event events.Event) error {
	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"pendingCount": len(p.pending),
	}).Debug("Adding event to transactional publisher pending queue")

	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events. Call only after the transaction committed.
func (p *TransactionalPublisher) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(p.pending)).Debug("Flushing pending events")

	for _, event := range p.pending {
		p.localHandlers.dispatch(ctx, event)

		// Partial failure must not block the remaining events
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
	return nil
}

// Discard clears all pending events without publishing them
func (p *TransactionalPublisher) Discard() {
	log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	p.pending = p.pending[:0]
}

// PendingCount returns the number of buffered events
func (p *TransactionalPublisher) PendingCount() int {
	return len(p.pending)
}
