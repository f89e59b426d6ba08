// AngelaMos | 2026
// publisher.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/apptnu/portal/internal/core"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// ErrBrokerUnavailable is returned while the publisher waits before its
// next reconnect attempt.
var ErrBrokerUnavailable = errors.New("rabbitmq unavailable")

const (
	defaultRedialInterval = 5 * time.Second
	dialTimeout           = 2 * time.Second
)

// session is one broker connection with a channel on it.
type session interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	IsClosed() bool
	Close() error
}

type amqpSession struct {
	conn *amqp.Connection
	*amqp.Channel
}

func (s *amqpSession) IsClosed() bool {
	return s.conn.IsClosed() || s.Channel.IsClosed()
}

func (s *amqpSession) Close() error {
	_ = s.Channel.Close() //nolint:errcheck // connection close follows
	return s.conn.Close()
}

func dialSession(url, exchange string) (session, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close() //nolint:errcheck // cleanup on setup failure
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()   //nolint:errcheck // cleanup on setup failure
		_ = conn.Close() //nolint:errcheck // cleanup on setup failure
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &amqpSession{conn: conn, Channel: ch}, nil
}

// RabbitPublisher publishes JSON payloads to a durable topic exchange.
// A lost connection is re-established on the next publish, at most once
// per redial interval.
type RabbitPublisher struct {
	exchange       string
	dial           func() (session, error)
	redialInterval time.Duration
	now            func() time.Time

	mu       sync.Mutex
	sess     session
	lastDial time.Time
	closed   bool
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	p := newRabbitPublisher(exchange, func() (session, error) {
		return dialSession(url, exchange)
	})

	sess, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.sess = sess
	p.lastDial = p.now()

	return p, nil
}

func newRabbitPublisher(exchange string, dial func() (session, error)) *RabbitPublisher {
	return &RabbitPublisher{
		exchange:       exchange,
		dial:           dial,
		redialInterval: defaultRedialInterval,
		now:            time.Now,
	}
}

func (p *RabbitPublisher) Publish(
	ctx context.Context,
	routingKey string,
	payload any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", routingKey, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// A session that died since the last publish gets one fresh retry.
	for attempt := 0; ; attempt++ {
		sess, err := p.current()
		if err != nil {
			return fmt.Errorf("publish %s: %w", routingKey, err)
		}

		err = sess.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
		if err == nil {
			return nil
		}
		if !sess.IsClosed() || attempt > 0 {
			return fmt.Errorf("publish %s: %w", routingKey, err)
		}
		p.drop()
	}
}

// current returns the live session, redialing when it is gone. Callers
// hold p.mu.
func (p *RabbitPublisher) current() (session, error) {
	if p.closed {
		return nil, fmt.Errorf("publisher closed: %w", amqp.ErrClosed)
	}

	if p.sess != nil && !p.sess.IsClosed() {
		return p.sess, nil
	}
	p.drop()

	if !p.lastDial.IsZero() && p.now().Sub(p.lastDial) < p.redialInterval {
		return nil, ErrBrokerUnavailable
	}

	p.lastDial = p.now()
	sess, err := p.dial()
	if err != nil {
		return nil, fmt.Errorf("reconnect: %w", err)
	}
	p.sess = sess

	return sess, nil
}

func (p *RabbitPublisher) drop() {
	if p.sess != nil {
		_ = p.sess.Close() //nolint:errcheck // session is already broken
		p.sess = nil
	}
}

// Ping reports whether the broker is reachable, reconnecting if the
// previous connection was lost.
func (p *RabbitPublisher) Ping(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.current()
	return err
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.sess == nil {
		return nil
	}

	err := p.sess.Close()
	p.sess = nil
	return err
}

// Nop discards every event. It is used when the broker is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

// Emitter publishes events on behalf of services. A failed publish is
// logged and never fails the write that caused it.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration
}

func NewEmitter(publisher Publisher, logger *slog.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		timeout:   2 * time.Second,
	}
}

func (e *Emitter) Emit(ctx context.Context, routingKey string, payload any) {
	if e == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	err := e.publisher.Publish(ctx, routingKey, payload)
	core.RecordEvent(ctx, routingKey, err)
	if err != nil {
		e.logger.WarnContext(ctx, "event publish failed",
			"routing_key", routingKey,
			"error", err,
		)
	}
}
