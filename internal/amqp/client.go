// Package amqp publishes ledger mutation events to RabbitMQ. Publishing
// happens after the store transaction committed and is best-effort: a
// broker outage never fails the mutation that triggered the event.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Shreenandbhattad/personal-finance-tracker/internal/core"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
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
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishTransactionCreated announces a freshly committed transaction.
func (c *Client) PublishTransactionCreated(ctx context.Context, t core.Transaction) error {
	return c.publish(ctx, &TransactionEvent{
		Event:      EventTransactionCreated,
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		Mode:       string(t.Mode),
		DeltaCents: t.Delta(),
		Timestamp:  time.Now(),
	})
}

// PublishTransactionDeleted announces a committed deletion; the delta is
// the reversal that was applied to the balances.
func (c *Client) PublishTransactionDeleted(ctx context.Context, t core.Transaction) error {
	return c.publish(ctx, &TransactionEvent{
		Event:      EventTransactionDeleted,
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		Mode:       string(t.Mode),
		DeltaCents: -t.Delta(),
		Timestamp:  time.Now(),
	})
}

// PublishTransactionsCleared announces a clear-all with the removed count.
func (c *Client) PublishTransactionsCleared(ctx context.Context, ownerID string, removed int) error {
	return c.publish(ctx, &TransactionEvent{
		Event:     EventTransactionsClear,
		OwnerID:   ownerID,
		Removed:   removed,
		Timestamp: time.Now(),
	})
}

func (c *Client) publish(ctx context.Context, msg *TransactionEvent) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
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

	slog.InfoContext(ctx, "Published ledger event",
		"event", msg.Event,
		"id", msg.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
