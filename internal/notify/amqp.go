package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// ErrDeliveryChannelClosed reports that the broker closed the consume stream.
var ErrDeliveryChannelClosed = errors.New("delivery channel closed")

// Client publishes and consumes transaction change events over AMQP.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       *zap.Logger
}

// NewClient dials the broker and declares a durable direct exchange with a
// bound queue.
func NewClient(url string, exchangeName string, queueName string, logger *zap.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (client *Client) setup() error {
	err := client.channel.ExchangeDeclare(
		client.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = client.channel.QueueDeclare(
		client.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = client.channel.QueueBind(
		client.queueName,
		client.queueName, // routing key matches queue name on a direct exchange
		client.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishTransactionChange publishes a persistent change event.
func (client *Client) PublishTransactionChange(ctx context.Context, change budget.TransactionChange) error {
	body, err := NewTransactionChangeMessage(change.Action, change.TransactionID).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = client.channel.PublishWithContext(
		ctx,
		client.exchangeName,
		client.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	client.logger.Info("published transaction change",
		zap.String("action", change.Action),
		zap.String("transaction_id", change.TransactionID),
		zap.String("exchange", client.exchangeName),
		zap.String("queue", client.queueName))
	return nil
}

// ConsumeTransactionChanges reads change events with manual acknowledgement
// and forwards them into the given channel until the context is cancelled.
// Undecodable deliveries are rejected without requeue.
func (client *Client) ConsumeTransactionChanges(ctx context.Context, changes chan<- budget.TransactionChange) error {
	deliveries, err := client.channel.Consume(
		client.queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	client.logger.Info("consuming transaction changes", zap.String("queue", client.queueName))

	for {
		select {
		case <-ctx.Done():
			client.logger.Info("stopping transaction change consumption", zap.Error(ctx.Err()))
			return ctx.Err()
		case delivery, open := <-deliveries:
			if !open {
				return ErrDeliveryChannelClosed
			}

			message, err := TransactionChangeMessageFromJSON(delivery.Body)
			if err != nil {
				client.logger.Error("failed to unmarshal transaction change", zap.Error(err))
				_ = delivery.Nack(false, false)
				continue
			}

			select {
			case changes <- budget.TransactionChange{Action: message.Action, TransactionID: message.TransactionID}:
				_ = delivery.Ack(false)
			case <-ctx.Done():
				_ = delivery.Nack(false, true)
				return ctx.Err()
			}
		}
	}
}

// Close releases the channel and connection.
func (client *Client) Close() error {
	if client.channel != nil {
		client.channel.Close()
	}
	if client.conn != nil {
		return client.conn.Close()
	}
	return nil
}
