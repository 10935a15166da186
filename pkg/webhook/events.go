package webhook

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flowkit/pkg/flow"
)

// EventType identifies which kind of notification was resolved.
type EventType string

const (
	// EventPaymentResolved fires when a payment notification resolves.
	EventPaymentResolved EventType = "payment.resolved"
	// EventRefundResolved fires when a refund notification resolves.
	EventRefundResolved EventType = "refund.resolved"
	// EventPlanPaid fires when a recurring plan charge resolves. The
	// provider reports it through the payment lookup, so the carried
	// resource is a payment.
	EventPlanPaid EventType = "plan.paid"
)

// Event is the envelope dispatched for each authenticated, resolved
// notification: exactly one per accepted request.
type Event struct {
	ID         uuid.UUID     `json:"id"`
	Type       EventType     `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Resource   flow.Resource `json:"resource"`
}

func newEvent(t EventType, res flow.Resource) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Resource:   res,
	}
}
