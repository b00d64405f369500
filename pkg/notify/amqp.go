package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publisher is satisfied by *amqp.Channel.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes notifications to a topic exchange with routing key
// "worker.<worker_id>.<kind>".
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
	logger   *zap.Logger
}

// DialAMQP connects, opens a channel and declares the exchange.
func DialAMQP(url, exchange string, logger *zap.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("amqp notifier ready", zap.String("exchange", exchange))
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func newAMQPNotifier(ch publisher, exchange string, logger *zap.Logger) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, exchange: exchange, logger: logger}
}

// RoutingKey for n.
func RoutingKey(n Notification) string {
	return fmt.Sprintf("worker.%s.%s", n.WorkerID, n.Kind)
}

func (a *AMQPNotifier) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = a.ch.PublishWithContext(ctx, a.exchange, RoutingKey(n), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID,
		Body:         body,
	})
	if err != nil {
		a.logger.Error("failed to publish notification", zap.String("worker_id", n.WorkerID), zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	a.logger.Debug("notification published", zap.String("worker_id", n.WorkerID), zap.String("kind", n.Kind))
	return nil
}

func (a *AMQPNotifier) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
