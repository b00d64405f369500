// Package notify sends worker-facing notifications. Delivery to devices
// happens downstream of the broker.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dispetcher/backend/config"
)

// Notification is one message for one worker.
type Notification struct {
	ID        string `json:"id"`
	WorkerID  string `json:"worker_id"`
	OrderID   string `json:"order_id,omitempty"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// Kinds
const (
	KindAssignment = "assignment"
)

// Notifier publishes notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Close() error
}

// New picks the notifier named by cfg.Driver.
func New(cfg *config.NotifyConfig, logger *zap.Logger) (Notifier, error) {
	switch cfg.Driver {
	case "amqp":
		return DialAMQP(cfg.AMQPURL, cfg.Exchange, logger)
	case "log", "":
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}

// LogNotifier only logs notifications.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Info("notification",
		zap.String("worker_id", n.WorkerID),
		zap.String("order_id", n.OrderID),
		zap.String("kind", n.Kind),
		zap.String("title", n.Title),
	)
	return nil
}

func (l *LogNotifier) Close() error { return nil }
