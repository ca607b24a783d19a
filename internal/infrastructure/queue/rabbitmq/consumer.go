package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
)

var ErrDeliveriesClosed = errors.New("rabbitmq deliveries channel closed")

type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

type ConsumerConfig struct {
	Exchange   string
	RoutingKey string
	Queue      string
	Logger     *logrus.Entry
}

// Consumer executes one import job at a time from the durable queue.
// Deliveries are acked once the runner returns; the job row carries the
// outcome, so failed runs are not redelivered.
type Consumer struct {
	channel *amqp.Channel
	queue   string
	runner  JobRunner
	logger  *logrus.Entry
}

func NewConsumer(conn *amqp.Connection, runner JobRunner, cfg ConsumerConfig) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareExchange(ch, cfg.Exchange); err != nil {
		_ = ch.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(
		cfg.Queue,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("bind queue %s: %w", cfg.Queue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Consumer{
		channel: ch,
		queue:   cfg.Queue,
		runner:  runner,
		logger:  logger.WithField("component", "rabbitmq_consumer"),
	}, nil
}

// Start blocks consuming deliveries until ctx is done or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	return consume(ctx, msgs, c.runner, c.logger)
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}

func consume(ctx context.Context, msgs <-chan amqp.Delivery, runner JobRunner, logger *logrus.Entry) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer shutting down")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			handleDelivery(ctx, msg, runner, logger)
		}
	}
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, runner JobRunner, logger *logrus.Entry) {
	var payload jobMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil || strings.TrimSpace(payload.JobID) == "" {
		logger.WithError(err).Warn("dropping malformed job message")
		_ = msg.Nack(false, false)
		return
	}

	err := runner.Run(ctx, payload.JobID)
	if err != nil {
		logger.WithError(err).WithField("job_id", payload.JobID).Error("import job failed")
	}

	if ctx.Err() != nil {
		// Shutdown interrupted the run; let the broker hand it out again.
		_ = msg.Nack(false, true)
		return
	}
	if errors.Is(err, domain.ErrLockNotAcquired) {
		// The job never left QUEUED.
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}
