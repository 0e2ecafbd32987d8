package notify

import (
	"context"

	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/httpclient"
	"github.com/kennelworks/kennelworks/internal/logger"
)

// Notifier delivers staff-facing notifications. Delivery is
// fire-and-forget and at-least-once: failures are logged and never
// surfaced to the scheduler, and a re-fired job may deliver the same
// reminder twice.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// NewNotifier selects the notification backend from configuration,
// defaulting to log delivery.
func NewNotifier(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) Notifier {
	if cfg.Notify.Driver == "webhook" && cfg.Notify.WebhookURL != "" {
		return NewWebhookNotifier(cfg.Notify.WebhookURL, client, log)
	}
	return NewLogNotifier(log)
}

// LogNotifier writes notifications to the structured log. It is the
// default sink for local deployments without a delivery channel.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(_ context.Context, title, body string) {
	n.logger.Infow("notification",
		"title", title,
		"body", body)
}
