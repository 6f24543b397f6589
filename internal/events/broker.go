package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/defect-track/internal/config"
)

// BrokerAdapter is the stubbed external message broker integration.
// Delivery is fire-and-forget with no acknowledgment contract; the
// adapter only logs what a real integration would publish.
type BrokerAdapter struct {
	cfg       config.BrokerConfig
	logger    *zap.Logger
	connected bool
}

// NewBrokerAdapter builds the adapter.
func NewBrokerAdapter(cfg config.BrokerConfig, logger *zap.Logger) *BrokerAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrokerAdapter{cfg: cfg, logger: logger}
}

// Connect establishes the (stub) broker connection.
func (b *BrokerAdapter) Connect(ctx context.Context) error {
	if !b.cfg.Enabled {
		b.logger.Info("message broker integration is disabled")
		return nil
	}
	b.logger.Info("message broker connection established (stub)",
		zap.String("addr", fmt.Sprintf("%s:%d", b.cfg.Host, b.cfg.Port)),
		zap.String("exchange", b.cfg.Exchange))
	b.connected = true
	return nil
}

// Publish forwards one event to the broker exchange.
func (b *BrokerAdapter) Publish(ctx context.Context, event Event) error {
	if !b.cfg.Enabled {
		b.logger.Debug("message broker disabled, event not forwarded",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return nil
	}
	b.logger.Info("publishing event to broker (stub)",
		zap.String("exchange", b.cfg.Exchange),
		zap.String("routing_key", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("defect_id", event.DefectID))
	return nil
}

// Close tears down the (stub) connection.
func (b *BrokerAdapter) Close() {
	if !b.connected {
		return
	}
	b.logger.Info("disconnecting from message broker")
	b.connected = false
}
