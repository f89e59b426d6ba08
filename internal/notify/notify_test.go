// AngelaMos | 2026
// notify_test.go

package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/events"
	"github.com/apptnu/portal/internal/notify"
)

type outcome struct {
	tag     uint64
	acked   bool
	requeue bool
}

type recorder struct {
	mu       sync.Mutex
	outcomes []outcome
}

func (r *recorder) Ack(tag uint64, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome{tag: tag, acked: true})
	return nil
}

func (r *recorder) Nack(tag uint64, _ bool, requeue bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome{tag: tag, requeue: requeue})
	return nil
}

func (r *recorder) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func (r *recorder) all() []outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outcome(nil), r.outcomes...)
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (c *captureNotifier) Notify(_ context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderPaymentWithNotes(t *testing.T) {
	n, err := notify.Render(events.RegistrationPaymentUpdated,
		[]byte(`{"registration_id":4,"member_id":2,"payment_status":"Confirmed","admin_notes":"verified"}`))
	require.NoError(t, err)
	assert.Equal(t, "Payment Confirmed", n.Subject)
	assert.Equal(t,
		"Payment for registration 4 of member 2 is Confirmed. Notes: verified",
		n.Message)
}

func TestRenderEveryKnownEvent(t *testing.T) {
	bodies := map[string]string{
		events.MemberCreated:                `{"member_id":1,"user_id":2,"university_name":"Universitas X"}`,
		events.MemberUpdated:                `{"member_id":1,"membership_status":"Active"}`,
		events.RegistrationCreated:          `{"registration_id":3,"member_id":1,"registration_type":"Perpanjangan"}`,
		events.RegistrationPaymentUpdated:   `{"registration_id":3,"member_id":1,"payment_status":"Rejected","admin_notes":null}`,
		events.RegistrationDocumentUploaded: `{"registration_id":3,"member_id":1,"document_type":"receipt","document_url":"https://x/r.pdf"}`,
	}

	for key, body := range bodies {
		t.Run(key, func(t *testing.T) {
			n, err := notify.Render(key, []byte(body))
			require.NoError(t, err)
			assert.Equal(t, key, n.RoutingKey)
			assert.NotEmpty(t, n.Subject)
			assert.NotEmpty(t, n.Message)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	_, err := notify.Render("member.deleted", []byte(`{}`))
	assert.ErrorIs(t, err, notify.ErrUnknownEvent)

	_, err = notify.Render(events.MemberCreated, []byte(`{"member_id":`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, notify.ErrUnknownEvent)
}

func TestWorkerAcknowledgement(t *testing.T) {
	rec := &recorder{}
	sink := &captureNotifier{}
	w := notify.NewWorker(sink, discard())

	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{
		Acknowledger: rec, DeliveryTag: 1,
		RoutingKey: events.MemberUpdated,
		Body:       []byte(`{"member_id":1,"membership_status":"Active"}`),
	}
	deliveries <- amqp.Delivery{
		Acknowledger: rec, DeliveryTag: 2,
		RoutingKey: "member.archived",
		Body:       []byte(`{}`),
	}
	deliveries <- amqp.Delivery{
		Acknowledger: rec, DeliveryTag: 3,
		RoutingKey: events.RegistrationCreated,
		Body:       []byte(`not json`),
	}
	close(deliveries)

	require.NoError(t, w.Run(context.Background(), deliveries))

	assert.Equal(t, []outcome{
		{tag: 1, acked: true},
		{tag: 2, acked: true},
		{tag: 3, acked: false, requeue: false},
	}, rec.all())
	require.Len(t, sink.sent, 1)
	assert.Equal(t, "Member 1 is now Active.", sink.sent[0].Message)
}

func TestWorkerRequeuesOnNotifierFailure(t *testing.T) {
	rec := &recorder{}
	w := notify.NewWorker(&captureNotifier{err: errors.New("smtp down")}, discard())

	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{
		Acknowledger: rec, DeliveryTag: 9,
		RoutingKey: events.MemberUpdated,
		Body:       []byte(`{"member_id":1,"membership_status":"Inactive"}`),
	}
	close(deliveries)

	require.NoError(t, w.Run(context.Background(), deliveries))
	assert.Equal(t, []outcome{{tag: 9, requeue: true}}, rec.all())
}

func TestWorkerStopsOnCancel(t *testing.T) {
	w := notify.NewWorker(&captureNotifier{}, discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, make(chan amqp.Delivery)) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestWorkerReportsClosedDeliveries(t *testing.T) {
	w := notify.NewWorker(&captureNotifier{}, discard())

	deliveries := make(chan amqp.Delivery)
	close(deliveries)
	assert.ErrorIs(t, w.Run(context.Background(), deliveries), notify.ErrDeliveriesClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx, deliveries))
}

func TestLogNotifier(t *testing.T) {
	n := notify.NewLogNotifier(discard())
	assert.NoError(t, n.Notify(context.Background(), notify.Notification{
		RoutingKey: events.MemberCreated,
		Subject:    "s",
		Message:    "m",
	}))
}
