package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/defect-track/internal/events"
)

// StartBrokerForwarder periodically drains the dispatcher queue and
// forwards events to the broker adapter. Delivery is fire-and-forget;
// an event that fails to forward is logged and dropped.
func StartBrokerForwarder(ctx context.Context, dispatcher events.Dispatcher, adapter *events.BrokerAdapter, interval time.Duration, logger *zap.Logger) {
	if dispatcher == nil || adapter == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				forward(ctx, dispatcher, adapter, logger)
				return
			case <-ticker.C:
				forward(ctx, dispatcher, adapter, logger)
			}
		}
	}()
}

func forward(ctx context.Context, dispatcher events.Dispatcher, adapter *events.BrokerAdapter, logger *zap.Logger) {
	drained := dispatcher.Drain()
	for _, event := range drained {
		if err := adapter.Publish(ctx, event); err != nil {
			logger.Warn("failed to forward event to broker",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}
