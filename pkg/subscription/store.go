package subscription

import (
	"context"
	"time"
)

// MirrorStore persists subscription mirror rows. Rows are addressed by the
// remote customer id plus the remote subscription id; implementations return
// ErrMirrorNotFound when a lookup misses.
type MirrorStore interface {
	// Get fetches one row by customer and subscription id.
	Get(ctx context.Context, customerID, subscriptionID string) (*Mirror, error)

	// First fetches the customer's only row. Used in single mode, where at
	// most one row exists per customer.
	First(ctx context.Context, customerID string) (*Mirror, error)

	// List returns a page of the customer's rows ordered by id.
	List(ctx context.Context, customerID string, limit, offset int) ([]Mirror, error)

	// Exists reports whether a row for the subscription is present.
	Exists(ctx context.Context, customerID, subscriptionID string) (bool, error)

	// ExistsForPlan reports whether the customer already mirrors a
	// subscription to the plan.
	ExistsForPlan(ctx context.Context, customerID, planID string) (bool, error)

	// DistinctPlanIDs returns the customer's distinct mirrored plan ids in
	// ascending order.
	DistinctPlanIDs(ctx context.Context, customerID string) ([]string, error)

	// Create inserts a new row.
	Create(ctx context.Context, m *Mirror) error

	// UpdatePeriods overwrites the trial end and period boundaries of a row.
	UpdatePeriods(ctx context.Context, customerID, subscriptionID string, trialEndsAt, startsAt, endsAt *time.Time) error

	// UpdateCoupon sets or clears the row's coupon id.
	UpdateCoupon(ctx context.Context, customerID, subscriptionID string, couponID *string) error

	// Delete removes one row. Deleting an absent row is not an error.
	Delete(ctx context.Context, customerID, subscriptionID string) error

	// DeleteAll removes every row for the customer.
	DeleteAll(ctx context.Context, customerID string) error
}
