// AngelaMos | 2026
// worker.go

package notify

import (
	"context"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker turns event deliveries into notifications.
//
// A delivery that cannot be decoded is rejected without requeue so it
// does not loop. Unknown routing keys are acked and skipped. A failing
// notifier requeues the delivery.
type Worker struct {
	notifier Notifier
	logger   *slog.Logger
}

func NewWorker(notifier Notifier, logger *slog.Logger) *Worker {
	return &Worker{notifier: notifier, logger: logger}
}

// ErrDeliveriesClosed means the broker closed the delivery channel while
// the worker was still meant to run.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Run consumes until ctx is done. A channel closed underneath it returns
// ErrDeliveriesClosed so the caller can reconnect or exit non-zero.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	n, err := Render(d.RoutingKey, d.Body)
	switch {
	case errors.Is(err, ErrUnknownEvent):
		w.logger.DebugContext(ctx, "skipping unknown event", "routing_key", d.RoutingKey)
		w.ack(ctx, d)
		return
	case err != nil:
		w.logger.WarnContext(ctx, "dropping undecodable event",
			"routing_key", d.RoutingKey,
			"message_id", d.MessageId,
			"error", err,
		)
		if nackErr := d.Nack(false, false); nackErr != nil {
			w.logger.ErrorContext(ctx, "nack failed", "error", nackErr)
		}
		return
	}

	if err := w.notifier.Notify(ctx, n); err != nil {
		w.logger.ErrorContext(ctx, "notify failed, requeueing",
			"routing_key", d.RoutingKey,
			"error", err,
		)
		if nackErr := d.Nack(false, true); nackErr != nil {
			w.logger.ErrorContext(ctx, "nack failed", "error", nackErr)
		}
		return
	}

	w.ack(ctx, d)
}

func (w *Worker) ack(ctx context.Context, d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		w.logger.ErrorContext(ctx, "ack failed",
			"routing_key", d.RoutingKey,
			"error", err,
		)
	}
}
