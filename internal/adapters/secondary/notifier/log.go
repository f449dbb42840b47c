package notifier

import (
	"context"

	log "github.com/sirupsen/logrus"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

// LogNotifier publishes commit notifications as structured log lines.
type LogNotifier struct {
	entry *log.Entry
}

func NewLogNotifier(logger *log.Logger) ports.ChangeNotifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogNotifier{entry: logger.WithField("component", "change-notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, notification domain.CommitNotification) {
	n.entry.WithFields(log.Fields{
		"project":  notification.ProjectID,
		"version":  notification.Version.String(),
		"kind":     notification.Kind,
		"added":    notification.Added,
		"modified": notification.Modified,
		"removed":  notification.Removed,
	}).Info("entities changed")
}

// Multi fans a notification out to several notifiers in order.
type Multi []ports.ChangeNotifier

func (m Multi) Notify(ctx context.Context, notification domain.CommitNotification) {
	for _, n := range m {
		n.Notify(ctx, notification)
	}
}
