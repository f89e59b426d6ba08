// AngelaMos | 2026
// notifier.go

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apptnu/portal/internal/events"
)

// ErrUnknownEvent is returned by Render for routing keys it has no
// template for.
var ErrUnknownEvent = errors.New("unknown event")

type Notification struct {
	RoutingKey string
	Subject    string
	Message    string
}

// Notifier delivers a rendered notification. Email or chat senders can
// replace the log notifier without touching the worker.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, n.Subject,
		"routing_key", n.RoutingKey,
		"message", n.Message,
	)
	return nil
}

func Render(routingKey string, body []byte) (Notification, error) {
	n := Notification{RoutingKey: routingKey}

	switch routingKey {
	case events.MemberCreated:
		ev, err := events.Decode[events.MemberCreatedData](body)
		if err != nil {
			return n, err
		}
		n.Subject = "New member application"
		n.Message = fmt.Sprintf(
			"%s (member %d, user %d) applied for membership and awaits review.",
			ev.UniversityName, ev.MemberID, ev.UserID,
		)

	case events.MemberUpdated:
		ev, err := events.Decode[events.MemberUpdatedData](body)
		if err != nil {
			return n, err
		}
		n.Subject = "Member updated"
		n.Message = fmt.Sprintf(
			"Member %d is now %s.",
			ev.MemberID, ev.MembershipStatus,
		)

	case events.RegistrationCreated:
		ev, err := events.Decode[events.RegistrationCreatedData](body)
		if err != nil {
			return n, err
		}
		n.Subject = "Registration submitted"
		n.Message = fmt.Sprintf(
			"Member %d submitted registration %d (%s).",
			ev.MemberID, ev.RegistrationID, ev.RegistrationType,
		)

	case events.RegistrationPaymentUpdated:
		ev, err := events.Decode[events.PaymentUpdatedData](body)
		if err != nil {
			return n, err
		}
		n.Subject = "Payment " + ev.PaymentStatus
		n.Message = fmt.Sprintf(
			"Payment for registration %d of member %d is %s.",
			ev.RegistrationID, ev.MemberID, ev.PaymentStatus,
		)
		if ev.AdminNotes != nil && *ev.AdminNotes != "" {
			n.Message += " Notes: " + *ev.AdminNotes
		}

	case events.RegistrationDocumentUploaded:
		ev, err := events.Decode[events.DocumentUploadedData](body)
		if err != nil {
			return n, err
		}
		n.Subject = "Document available"
		n.Message = fmt.Sprintf(
			"A %s for registration %d of member %d is available at %s.",
			ev.DocumentType, ev.RegistrationID, ev.MemberID, ev.DocumentURL,
		)

	default:
		return n, fmt.Errorf("render %s: %w", routingKey, ErrUnknownEvent)
	}

	return n, nil
}
