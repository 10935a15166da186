package subscription

import (
	"context"
	"errors"

	"github.com/dmitrymomot/flowkit/pkg/flow"
)

// Mode selects how many concurrent subscriptions one customer may mirror.
type Mode int

const (
	// ModeSingle allows at most one active mirror row per customer.
	ModeSingle Mode = iota
	// ModeMulti allows any number of rows, disambiguated by subscription id.
	ModeMulti
)

// listPageLimit is the page size used for remote listings. The provider's
// maximum, so one page per plan covers any realistic customer.
const listPageLimit = 100

// Manager owns creation, update, cancellation and coupon attachment for a
// customer's subscriptions, keeping the mirror store consistent with the
// outcome of each remote call.
//
// Guarded operations return ok == false with a nil error when a precondition
// does not hold; remote and store failures propagate unchanged. The manager
// adds no locking of its own: two concurrent Subscribe calls for the same plan
// can both pass the guard and both succeed remotely. Callers that need a
// stronger guarantee should add a partial unique index on
// (remote_customer_id, plan_id) and treat the violation as a guard rejection.
type Manager struct {
	mode    Mode
	api     flow.SubscriptionAPI
	coupons flow.CouponAPI
	store   MirrorStore
}

// NewManager creates a Manager. Panics on nil dependencies or an unknown mode
// to fail fast during initialization.
func NewManager(mode Mode, api flow.SubscriptionAPI, coupons flow.CouponAPI, store MirrorStore) *Manager {
	if mode != ModeSingle && mode != ModeMulti {
		panic(ErrInvalidMode)
	}
	if api == nil {
		panic("subscription: flow.SubscriptionAPI is required")
	}
	if coupons == nil {
		panic("subscription: flow.CouponAPI is required")
	}
	if store == nil {
		panic("subscription: MirrorStore is required")
	}
	return &Manager{mode: mode, api: api, coupons: coupons, store: store}
}

// Mode returns the configured mode.
func (m *Manager) Mode() Mode {
	return m.mode
}

// resolve finds the mirror row an operation targets. In single mode the
// customer's only row is used and subscriptionID is ignored; in multi mode the
// row is addressed by subscription id.
func (m *Manager) resolve(ctx context.Context, customerID, subscriptionID string) (*Mirror, error) {
	if m.mode == ModeSingle {
		return m.store.First(ctx, customerID)
	}
	return m.store.Get(ctx, customerID, subscriptionID)
}

// HasSubscription reports whether a matching mirror row exists. In single
// mode subscriptionID is ignored.
func (m *Manager) HasSubscription(ctx context.Context, customerID, subscriptionID string) (bool, error) {
	if m.mode == ModeSingle {
		_, err := m.store.First(ctx, customerID)
		if errors.Is(err, ErrMirrorNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return m.store.Exists(ctx, customerID, subscriptionID)
}

// Subscription fetches the remote subscription behind a mirror row.
func (m *Manager) Subscription(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, bool, error) {
	mirror, err := m.resolve(ctx, customerID, subscriptionID)
	if errors.Is(err, ErrMirrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	res, err := m.api.GetSubscription(ctx, mirror.SubscriptionID)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// Subscribe subscribes the customer to a plan. Single mode rejects when any
// row already exists; multi mode rejects when a row for attrs["planId"]
// exists. The remote resource is returned even when the provider reports
// non-existence, so callers can inspect its status; a mirror row is only
// written when the result exists.
func (m *Manager) Subscribe(ctx context.Context, customerID string, attrs flow.Attributes) (*flow.SubscriptionResource, bool, error) {
	switch m.mode {
	case ModeSingle:
		_, err := m.store.First(ctx, customerID)
		if err == nil {
			return nil, false, nil
		}
		if !errors.Is(err, ErrMirrorNotFound) {
			return nil, false, err
		}
	case ModeMulti:
		planID, _ := attrs["planId"].(string)
		exists, err := m.store.ExistsForPlan(ctx, customerID, planID)
		if err != nil {
			return nil, false, err
		}
		if exists {
			return nil, false, nil
		}
	}
	return m.ForceSubscribe(ctx, customerID, attrs)
}

// ForceSubscribe performs the remote create without the duplicate guard.
func (m *Manager) ForceSubscribe(ctx context.Context, customerID string, attrs flow.Attributes) (*flow.SubscriptionResource, bool, error) {
	res, err := m.api.CreateSubscription(ctx, attrs.Merge(flow.Attributes{
		"customerId": customerID,
	}))
	if err != nil {
		return nil, false, err
	}

	if res.Exists {
		if err := m.store.Create(ctx, &Mirror{
			CustomerID:     customerID,
			SubscriptionID: res.SubscriptionID,
			PlanID:         res.PlanID,
			TrialStartsAt:  res.TrialStart,
			TrialEndsAt:    res.TrialEnd,
			StartsAt:       res.PeriodStart,
			EndsAt:         res.PeriodEnd,
		}); err != nil {
			return nil, false, err
		}
	}

	return res, true, nil
}

// Update changes the subscription's trial period at the provider. The remote
// call is issued unconditionally; avoiding it when no mirror row exists is the
// caller's responsibility. When the result exists, the row's trial end and
// period boundaries are overwritten from it.
func (m *Manager) Update(ctx context.Context, customerID, subscriptionID string, trialPeriodDays int) (*flow.SubscriptionResource, error) {
	res, err := m.api.UpdateSubscription(ctx, subscriptionID, flow.Attributes{
		"trial_period_days": trialPeriodDays,
	})
	if err != nil {
		return nil, err
	}

	if res.Exists {
		if err := m.store.UpdatePeriods(ctx, customerID, subscriptionID, res.TrialEnd, res.PeriodStart, res.PeriodEnd); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// Unsubscribe cancels the subscription at the end of its current cycle.
func (m *Manager) Unsubscribe(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, bool, error) {
	return m.unsubscribe(ctx, customerID, subscriptionID, false)
}

// UnsubscribeNow cancels the subscription immediately.
func (m *Manager) UnsubscribeNow(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, bool, error) {
	return m.unsubscribe(ctx, customerID, subscriptionID, true)
}

func (m *Manager) unsubscribe(ctx context.Context, customerID, subscriptionID string, now bool) (*flow.SubscriptionResource, bool, error) {
	mirror, err := m.resolve(ctx, customerID, subscriptionID)
	if errors.Is(err, ErrMirrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	res, err := m.cancel(ctx, customerID, mirror.SubscriptionID, now)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// ForceUnsubscribe cancels at period end without consulting the mirror store
// for a guard. The row, if any, is still deleted on confirmed non-existence.
func (m *Manager) ForceUnsubscribe(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, error) {
	return m.cancel(ctx, customerID, subscriptionID, false)
}

// ForceUnsubscribeNow cancels immediately without the guard.
func (m *Manager) ForceUnsubscribeNow(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, error) {
	return m.cancel(ctx, customerID, subscriptionID, true)
}

// cancel issues the remote cancellation and removes the mirror row only when
// the result reports non-existence. A result that still exists (cancellation
// scheduled for period end) leaves the row in place, stale EndsAt included;
// no follow-up job revisits it.
func (m *Manager) cancel(ctx context.Context, customerID, subscriptionID string, now bool) (*flow.SubscriptionResource, error) {
	res, err := m.api.CancelSubscription(ctx, subscriptionID, now)
	if err != nil {
		return nil, err
	}

	if !res.Exists {
		if err := m.store.Delete(ctx, customerID, subscriptionID); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// AttachCoupon attaches a coupon to the subscription unless the mirror row is
// missing or already carries one.
func (m *Manager) AttachCoupon(ctx context.Context, customerID, subscriptionID, couponID string) (*flow.SubscriptionResource, bool, error) {
	mirror, err := m.resolve(ctx, customerID, subscriptionID)
	if errors.Is(err, ErrMirrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if mirror.HasCoupon() {
		return nil, false, nil
	}
	return m.attachCoupon(ctx, customerID, mirror.SubscriptionID, couponID)
}

// AttachOrReplaceCoupon attaches a coupon regardless of whether one is
// already present. Only the row's existence is required.
func (m *Manager) AttachOrReplaceCoupon(ctx context.Context, customerID, subscriptionID, couponID string) (*flow.SubscriptionResource, bool, error) {
	mirror, err := m.resolve(ctx, customerID, subscriptionID)
	if errors.Is(err, ErrMirrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m.attachCoupon(ctx, customerID, mirror.SubscriptionID, couponID)
}

// attachCoupon issues the remote call and then writes the local coupon id
// unconditionally. Unlike create/cancel, the result's existence flag is not
// consulted: once the call is issued without error it is treated as
// authoritative.
func (m *Manager) attachCoupon(ctx context.Context, customerID, subscriptionID, couponID string) (*flow.SubscriptionResource, bool, error) {
	res, err := m.coupons.AddCoupon(ctx, subscriptionID, couponID)
	if err != nil {
		return nil, false, err
	}

	if err := m.store.UpdateCoupon(ctx, customerID, subscriptionID, &couponID); err != nil {
		return nil, false, err
	}

	return res, true, nil
}

// DetachCoupon removes the subscription's coupon and clears the local coupon id.
func (m *Manager) DetachCoupon(ctx context.Context, customerID, subscriptionID string) (*flow.SubscriptionResource, bool, error) {
	mirror, err := m.resolve(ctx, customerID, subscriptionID)
	if errors.Is(err, ErrMirrorNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	res, err := m.coupons.RemoveCoupon(ctx, mirror.SubscriptionID)
	if err != nil {
		return nil, false, err
	}

	if err := m.store.UpdateCoupon(ctx, customerID, mirror.SubscriptionID, nil); err != nil {
		return nil, false, err
	}

	return res, true, nil
}

// SubscriptionsForPlan returns the provider's authoritative list of the
// customer's subscriptions to one plan. Multi mode only. The provider filter
// requires the customer's display name; an empty name is a guard rejection,
// as is the absence of any local row for the plan.
func (m *Manager) SubscriptionsForPlan(ctx context.Context, customerID, displayName, planID string) ([]flow.SubscriptionResource, bool, error) {
	if m.mode != ModeMulti || displayName == "" {
		return nil, false, nil
	}

	subscribed, err := m.store.ExistsForPlan(ctx, customerID, planID)
	if err != nil {
		return nil, false, err
	}
	if !subscribed {
		return nil, false, nil
	}

	items, err := m.listPlan(ctx, displayName, planID)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// AllSubscriptions returns the provider's view of every subscription the
// customer mirrors locally: one paged query per distinct plan id,
// concatenated in plan order. Multi mode only.
func (m *Manager) AllSubscriptions(ctx context.Context, customerID, displayName string) ([]flow.SubscriptionResource, bool, error) {
	if m.mode != ModeMulti || displayName == "" {
		return nil, false, nil
	}

	plans, err := m.store.DistinctPlanIDs(ctx, customerID)
	if err != nil {
		return nil, false, err
	}
	if len(plans) == 0 {
		return nil, false, nil
	}

	var all []flow.SubscriptionResource
	for _, planID := range plans {
		items, err := m.listPlan(ctx, displayName, planID)
		if err != nil {
			return nil, false, err
		}
		all = append(all, items...)
	}

	return all, true, nil
}

func (m *Manager) listPlan(ctx context.Context, displayName, planID string) ([]flow.SubscriptionResource, error) {
	page, err := m.api.ListByPlan(ctx, flow.ListFilter{
		PlanID: planID,
		Name:   displayName,
		Status: 1,
		Limit:  listPageLimit,
		Start:  0,
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// SubscriptionIDs returns a page of the customer's mirrored subscription ids.
// Together with PurgeMirrors it serves the delete sweep run by the lifecycle
// observer.
func (m *Manager) SubscriptionIDs(ctx context.Context, customerID string, limit, offset int) ([]string, error) {
	mirrors, err := m.store.List(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(mirrors))
	for i, mirror := range mirrors {
		ids[i] = mirror.SubscriptionID
	}
	return ids, nil
}

// PurgeMirrors removes every mirror row for the customer unconditionally.
func (m *Manager) PurgeMirrors(ctx context.Context, customerID string) error {
	return m.store.DeleteAll(ctx, customerID)
}
