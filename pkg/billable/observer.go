package billable

import (
	"context"
	"slices"

	"github.com/dmitrymomot/flowkit/pkg/flow"
)

// sweepBatchSize bounds how many mirror rows are loaded per page during the
// delete sweep.
const sweepBatchSize = 10

// Unsubscriber is the slice of the subscription manager the observer needs to
// tear down a deleted entity's subscriptions. Satisfied by
// subscription.Manager.
type Unsubscriber interface {
	// SubscriptionIDs returns a page of the customer's mirrored subscription ids.
	SubscriptionIDs(ctx context.Context, customerID string, limit, offset int) ([]string, error)

	// UnsubscribeNow cancels one subscription immediately.
	UnsubscribeNow(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, bool, error)

	// PurgeMirrors removes every mirror row for the customer.
	PurgeMirrors(ctx context.Context, customerID string) error
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithSubscriptions attaches a subscription manager so OnDeleted also sweeps
// the entity's mirror rows.
func WithSubscriptions(m Unsubscriber) ObserverOption {
	return func(o *Observer) {
		o.subs = m
	}
}

// WithNameField overrides the changed-field key that identifies the customer
// name. Default is "name".
func WithNameField(key string) ObserverOption {
	return func(o *Observer) {
		if key != "" {
			o.nameField = key
		}
	}
}

// WithEmailField overrides the changed-field key that identifies the customer
// email. Default is "email".
func WithEmailField(key string) ObserverOption {
	return func(o *Observer) {
		if key != "" {
			o.emailField = key
		}
	}
}

// Observer binds entity persistence events to the customer syncer and,
// optionally, the subscription manager. The persistence layer calls these
// hooks directly after its own create/update/delete succeeds; writes issued
// by the syncer itself go through RawStore and therefore never come back here.
type Observer struct {
	syncer     *Syncer
	subs       Unsubscriber
	nameField  string
	emailField string
}

// NewObserver creates an Observer around the given syncer.
func NewObserver(s *Syncer, opts ...ObserverOption) *Observer {
	if s == nil {
		panic("billable: Syncer is required")
	}
	o := &Observer{
		syncer:     s,
		nameField:  "name",
		emailField: "email",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnCreated creates the remote customer for entities flagged to sync on
// create. The guarded variant is used on purpose: an entity restored with an
// existing customer id is left alone.
func (o *Observer) OnCreated(ctx context.Context, e Entity) error {
	if !e.SyncOnCreate() {
		return nil
	}
	_, _, err := o.syncer.CreateCustomer(ctx, e, nil)
	return err
}

// OnUpdated pushes the new name/email to the provider when either changed in
// this write. Other field changes are ignored.
func (o *Observer) OnUpdated(ctx context.Context, e Entity, changed []string) error {
	if !slices.Contains(changed, o.nameField) && !slices.Contains(changed, o.emailField) {
		return nil
	}
	_, _, err := o.syncer.UpdateCustomer(ctx, e)
	return err
}

// OnDeleted deletes the remote customer and, when a subscription manager is
// attached, cancels every mirrored subscription and purges the rows. The
// trailing purge is a cleanup sweep: it does not require each cancellation to
// have reported non-existence, since the entity itself is going away.
func (o *Observer) OnDeleted(ctx context.Context, e Entity) error {
	if _, _, err := o.syncer.DeleteCustomer(ctx, e); err != nil {
		return err
	}

	if o.subs == nil {
		return nil
	}
	customerID := e.Billing().CustomerID
	if customerID == "" {
		return nil
	}

	// Offset pagination tolerates rows deleted mid-sweep; whatever is
	// skipped falls to the unconditional purge below.
	for offset := 0; ; offset += sweepBatchSize {
		ids, err := o.subs.SubscriptionIDs(ctx, customerID, sweepBatchSize, offset)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			if _, _, err := o.subs.UnsubscribeNow(ctx, customerID, id); err != nil {
				return err
			}
		}
		if len(ids) < sweepBatchSize {
			break
		}
	}

	return o.subs.PurgeMirrors(ctx, customerID)
}
