// AngelaMos | 2026
// consumer.go

package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Bindings []string
	Prefetch int
	Tag      string
}

// Consumer reads from a durable queue bound to the portal exchange.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	tag   string
}

func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	c := &Consumer{conn: conn, tag: cfg.Tag}
	if err := c.setup(cfg); err != nil {
		_ = c.Close() //nolint:errcheck // cleanup on setup failure
		return nil, err
	}

	return c, nil
}

func (c *Consumer) setup(cfg ConsumerConfig) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	c.ch = ch

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	c.queue = q.Name

	for _, key := range cfg.Bindings {
		if err := ch.QueueBind(q.Name, key, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	return nil
}

func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return msgs, nil
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close() //nolint:errcheck // connection close follows
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
