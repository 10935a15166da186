package subscription

import "time"

// Mirror is the local reflection of one remote subscription. A row existing
// means the subscription was confirmed to exist remotely at the time the row
// was written; the row is removed as soon as the remote confirms it is gone.
type Mirror struct {
	ID             int64
	CustomerID     string // remote customer id the subscription belongs to
	SubscriptionID string // remote primary key
	PlanID         string
	CouponID       *string
	TrialStartsAt  *time.Time
	TrialEndsAt    *time.Time
	StartsAt       *time.Time
	EndsAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasCoupon reports whether a coupon is attached locally.
func (m *Mirror) HasCoupon() bool {
	return m.CouponID != nil && *m.CouponID != ""
}
