package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes lifecycle events to in-process subscribers and
// buffers them for forwarding to an external broker.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) Event
	Subscribe(eventType EventType, handler EventHandler)
	Drain() []Event
	ClearQueue()
}

// inMemoryDispatcher is a synchronous dispatcher with an unbounded
// event queue. Construct one per application instance and pass it by
// dependency injection; there is no process-wide singleton.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     []Event
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish assigns id and timestamp, enqueues the event and
// synchronously invokes handlers in subscription order. Handler
// failures are isolated: they are logged and never abort the fan-out.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.Lock()
	d.queue = append(d.queue, event)
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.Unlock()

	for _, handler := range handlers {
		d.invoke(ctx, handler, event)
	}
	return event
}

func (d *inMemoryDispatcher) invoke(ctx context.Context, handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Any("panic", r))
		}
	}()
	if err := handler(ctx, event); err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Drain atomically removes and returns all queued events.
func (d *inMemoryDispatcher) Drain() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	drained := d.queue
	d.queue = nil
	return drained
}

// ClearQueue discards all queued events.
func (d *inMemoryDispatcher) ClearQueue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = nil
}
