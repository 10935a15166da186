package billable

import (
	"context"

	"github.com/dmitrymomot/flowkit/pkg/flow"
)

// Syncer reconciles an entity's local billing fields against the remote
// customer record. Guarded operations return ok == false with a nil error when
// a precondition does not hold (guard rejection); remote and store failures
// propagate unchanged. Force variants skip the guard for callers that already
// know the precondition holds.
type Syncer struct {
	api   flow.CustomerAPI
	store RawStore
}

// NewSyncer creates a Syncer. Panics on nil dependencies to fail fast during
// initialization.
func NewSyncer(api flow.CustomerAPI, store RawStore) *Syncer {
	if api == nil {
		panic("billable: flow.CustomerAPI is required")
	}
	if store == nil {
		panic("billable: RawStore is required")
	}
	return &Syncer{api: api, store: store}
}

// HasCustomer reports whether the entity has a remote customer registered locally.
func (s *Syncer) HasCustomer(e Entity) bool {
	return e.Billing().HasCustomer()
}

// HasCard reports whether the entity has a card registered locally.
func (s *Syncer) HasCard(e Entity) bool {
	return e.Billing().HasCard()
}

// Customer fetches the remote customer record when one exists.
func (s *Syncer) Customer(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	if !s.HasCustomer(e) {
		return nil, false, nil
	}
	res, err := s.api.GetCustomer(ctx, e.Billing().CustomerID)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// CreateCustomer registers the entity as a customer with the provider unless
// one already exists. Extra attributes override the derived name, email and
// externalId. On success the returned customer id and card fields are written
// back silently.
func (s *Syncer) CreateCustomer(ctx context.Context, e Entity, extra flow.Attributes) (*flow.CustomerResource, bool, error) {
	if s.HasCustomer(e) {
		return nil, false, nil
	}
	return s.ForceCreateCustomer(ctx, e, extra)
}

// ForceCreateCustomer performs the remote create unconditionally.
func (s *Syncer) ForceCreateCustomer(ctx context.Context, e Entity, extra flow.Attributes) (*flow.CustomerResource, bool, error) {
	attrs := s.identity(e).Merge(extra)

	customer, err := s.api.CreateCustomer(ctx, attrs)
	if err != nil {
		return nil, false, err
	}

	if err := s.writeBack(ctx, e, Info{
		CustomerID:   customer.CustomerID,
		CardBrand:    customer.CardBrand,
		CardLastFour: customer.CardLastFour,
	}); err != nil {
		return nil, false, err
	}

	return customer, true, nil
}

// UpdateCustomer pushes the entity's current name, email and external id to
// the provider. Card fields are not refreshed locally.
func (s *Syncer) UpdateCustomer(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	if !s.HasCustomer(e) {
		return nil, false, nil
	}
	return s.ForceUpdateCustomer(ctx, e)
}

// ForceUpdateCustomer performs the remote update unconditionally.
func (s *Syncer) ForceUpdateCustomer(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	res, err := s.api.UpdateCustomer(ctx, e.Billing().CustomerID, s.identity(e))
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// DeleteCustomer removes the remote customer when one exists. Local fields are
// left untouched; the entity itself is usually on its way out.
func (s *Syncer) DeleteCustomer(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	if !s.HasCustomer(e) {
		return nil, false, nil
	}
	return s.ForceDeleteCustomer(ctx, e)
}

// ForceDeleteCustomer performs the remote delete unconditionally.
func (s *Syncer) ForceDeleteCustomer(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	res, err := s.api.DeleteCustomer(ctx, e.Billing().CustomerID)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// RegisterCard starts the hosted card registration flow. Requires a customer
// and no registered card. Local fields are not touched here; the completion
// flow calls SyncCard with the resolved customer resource.
func (s *Syncer) RegisterCard(ctx context.Context, e Entity) (*flow.CardRegistration, bool, error) {
	if !s.HasCustomer(e) || s.HasCard(e) {
		return nil, false, nil
	}
	return s.ForceRegisterCard(ctx, e)
}

// ForceRegisterCard performs the remote card registration unconditionally.
func (s *Syncer) ForceRegisterCard(ctx context.Context, e Entity) (*flow.CardRegistration, bool, error) {
	res, err := s.api.RegisterCard(ctx, e.Billing().CustomerID)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// SyncCard overwrites the local customer id and card fields from the given
// remote resource, silently. Used when a card registration resolves.
func (s *Syncer) SyncCard(ctx context.Context, e Entity, customer *flow.CustomerResource) error {
	return s.writeBack(ctx, e, Info{
		CustomerID:   customer.CustomerID,
		CardBrand:    customer.CardBrand,
		CardLastFour: customer.CardLastFour,
	})
}

// RemoveCard unregisters the customer's card. Requires a customer and a card.
// Local card fields are cleared only when the provider confirms no card
// remains on the customer.
func (s *Syncer) RemoveCard(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	if !s.HasCustomer(e) || !s.HasCard(e) {
		return nil, false, nil
	}
	return s.ForceRemoveCard(ctx, e)
}

// ForceRemoveCard performs the remote card removal unconditionally.
func (s *Syncer) ForceRemoveCard(ctx context.Context, e Entity) (*flow.CustomerResource, bool, error) {
	customer, err := s.api.UnregisterCard(ctx, e.Billing().CustomerID)
	if err != nil {
		return nil, false, err
	}

	if !customer.HasCard() {
		info := *e.Billing()
		info.CardBrand = ""
		info.CardLastFour = ""
		if err := s.writeBack(ctx, e, info); err != nil {
			return nil, false, err
		}
	}

	return customer, true, nil
}

// Charge bills the customer, by card or email, merging the customer id into
// the given attributes. Requires a customer.
func (s *Syncer) Charge(ctx context.Context, e Entity, attrs flow.Attributes) (*flow.Resource, bool, error) {
	if !s.HasCustomer(e) {
		return nil, false, nil
	}
	return s.ForceCharge(ctx, e, attrs)
}

// ChargeToCard bills the customer only when a card is registered.
func (s *Syncer) ChargeToCard(ctx context.Context, e Entity, attrs flow.Attributes) (*flow.Resource, bool, error) {
	if !s.HasCard(e) {
		return nil, false, nil
	}
	return s.Charge(ctx, e, attrs)
}

// Subscriber is the slice of the subscription manager needed to open a
// subscription for a payer. Satisfied by subscription.Manager.
type Subscriber interface {
	Subscribe(ctx context.Context, customerID string, attrs flow.Attributes) (*flow.SubscriptionResource, bool, error)
}

// SubscribeWithCard opens a subscription only when the entity has a
// registered card, so the recurring charge has a funding source. The
// manager's own duplicate guard still applies on top.
func (s *Syncer) SubscribeWithCard(ctx context.Context, e Entity, subs Subscriber, attrs flow.Attributes) (*flow.SubscriptionResource, bool, error) {
	if !s.HasCard(e) {
		return nil, false, nil
	}
	return subs.Subscribe(ctx, e.Billing().CustomerID, attrs)
}

// ForceCharge performs the charge unconditionally.
func (s *Syncer) ForceCharge(ctx context.Context, e Entity, attrs flow.Attributes) (*flow.Resource, bool, error) {
	res, err := s.api.Charge(ctx, attrs.Merge(flow.Attributes{
		"customerId": e.Billing().CustomerID,
	}))
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// identity derives the attributes that identify the entity as a customer.
func (s *Syncer) identity(e Entity) flow.Attributes {
	return flow.Attributes{
		"name":       e.CustomerName(),
		"email":      e.CustomerEmail(),
		"externalId": e.ExternalID().String(),
	}
}

// writeBack persists the mirror fields through the raw store and reflects
// them on the in-memory entity. Never routed through the normal mutation path
// so the lifecycle observer is not re-entered.
func (s *Syncer) writeBack(ctx context.Context, e Entity, info Info) error {
	if err := s.store.UpdateBillingInfo(ctx, e.EntityID(), info); err != nil {
		return err
	}
	*e.Billing() = info
	return nil
}
