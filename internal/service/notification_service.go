package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/events"
)

// NotificationService turns domain events into notices for the affected principals.
// Delivery is log-only; a broker publisher may be subscribed alongside it.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventJobCreated, n.handleJobCreated)
	n.dispatcher.Subscribe(events.EventJobAccepted, n.handleJobAccepted)
	n.dispatcher.Subscribe(events.EventAcceptanceClosed, n.handleAcceptanceClosed)
	n.dispatcher.Subscribe(events.EventJobDeleted, n.handleJobDeleted)
}

func (n *NotificationService) handleJobCreated(_ context.Context, event events.Event) error {
	n.logger.Info("JobCreated", zap.String("job_id", event.JobID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleJobAccepted(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobAcceptedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("JobAccepted",
		zap.String("job_id", event.JobID),
		zap.String("notify", payload.PosterEmail),
		zap.String("accepted_by", payload.AcceptedByEmail))
	return nil
}

func (n *NotificationService) handleAcceptanceClosed(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AcceptanceClosedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("AcceptanceClosed",
		zap.String("job_id", event.JobID),
		zap.String("reason", string(payload.Reason)),
		zap.String("actor", event.ActorEmail))
	return nil
}

func (n *NotificationService) handleJobDeleted(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobDeletedPayload)
	if !ok || !payload.HadAcceptance {
		return nil
	}
	n.logger.Info("AcceptedJobDeleted", zap.String("job_id", event.JobID), zap.String("actor", event.ActorEmail))
	return nil
}
