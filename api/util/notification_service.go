// api/util/notification_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// NotificationService delivers oversight and operational notifications. The
// current implementation writes structured log lines; a message queue client
// would slot in behind the same methods.
type NotificationService struct {
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyFlag reports a suspect decision to operators. Delivery is
// best-effort; a failure here never touches the decision or its audit entry.
func (n *NotificationService) NotifyFlag(ctx context.Context, flag *model.Flag) error {
	logger.Warn("NOTIFICATION: Decision flagged by oversight",
		zap.String("correlationID", flag.CorrelationID),
		zap.String("verdict", string(flag.Verdict)),
		zap.String("rationale", flag.Rationale),
		zap.Float64("confidence", flag.Confidence))
	return nil
}

// NotifyRulesReloaded reports that a new rules snapshot is live.
func (n *NotificationService) NotifyRulesReloaded(ctx context.Context, version int64) error {
	logger.Info("NOTIFICATION: Rules reloaded",
		zap.Int64("version", version))
	return nil
}

func (n *NotificationService) NotifyOperators(ctx context.Context, message string) error {
	logger.Info("Notifying operators", zap.String("message", message))
	return nil
}

// FlagFanout publishes oversight flags on the event bus and forwards them to
// the notification service.
type FlagFanout struct {
	Bus      *EventBus
	Notifier *NotificationService
}

func (f *FlagFanout) NotifyFlag(ctx context.Context, flag *model.Flag) error {
	f.Bus.Publish(ctx, EventOversightFlagged, flag)
	return f.Notifier.NotifyFlag(ctx, flag)
}
