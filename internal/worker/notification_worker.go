package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a broker publisher
// is configured, forwards every event to it.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, publisher *events.AMQPPublisher, logger *zap.Logger) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if publisher != nil && dispatcher != nil {
		publisher.Register(dispatcher)
		logger.Info("forwarding events to broker")
	}
}
