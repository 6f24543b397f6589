package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/defect-track/internal/events"
	"github.com/spec-kit/defect-track/internal/observability"
)

// NotificationService logs lifecycle events and feeds event counters.
// Handlers must stay fast and non-blocking; the dispatcher runs them
// synchronously inside the publish call.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDefectCreated, n.handleDefectCreated)
	n.dispatcher.Subscribe(events.EventDefectStatusChanged, n.handleDefectStatusChanged)
	n.dispatcher.Subscribe(events.EventDefectCancelled, n.handleDefectCancelled)
}

func (n *NotificationService) handleDefectCreated(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("defect created",
		zap.String("event_id", event.ID),
		zap.String("defect_id", event.DefectID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleDefectStatusChanged(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("defect status changed",
		zap.String("event_id", event.ID),
		zap.String("defect_id", event.DefectID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleDefectCancelled(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("defect cancelled",
		zap.String("event_id", event.ID),
		zap.String("defect_id", event.DefectID),
		zap.Any("payload", event.Payload))
	return nil
}
