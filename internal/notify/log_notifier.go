package notify

import (
	"context"
	"log/slog"

	"refchain/internal/notify/metrics"
)

// LogNotifier writes messages to the structured log instead of a real
// delivery channel. It is the default gateway for local runs and tests;
// production deployments swap in an adapter for the email/SMS provider.
type LogNotifier struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewLogNotifier constructs a log-backed notifier.
func NewLogNotifier(logger *slog.Logger, m *metrics.Metrics) *LogNotifier {
	return &LogNotifier{logger: logger, metrics: m}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) bool {
	n.logger.InfoContext(ctx, "notification dispatched",
		"kind", msg.Kind,
		"recipient", msg.RecipientEmail,
		"reference_type", msg.ReferenceType,
	)
	if n.metrics != nil {
		n.metrics.IncrementSent(string(msg.Kind), true)
	}
	return true
}
