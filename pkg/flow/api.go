package flow

import "context"

// CustomerAPI groups the remote customer and charge operations.
//
// Implementations wrap the provider SDK's transport; the core only consumes
// this typed contract and propagates any transport failure unchanged.
type CustomerAPI interface {
	// CreateCustomer registers a new customer with the provider.
	CreateCustomer(ctx context.Context, attrs Attributes) (*CustomerResource, error)

	// UpdateCustomer overwrites the remote customer's name, email and external id.
	UpdateCustomer(ctx context.Context, customerID string, attrs Attributes) (*CustomerResource, error)

	// DeleteCustomer removes the customer from the provider.
	DeleteCustomer(ctx context.Context, customerID string) (*CustomerResource, error)

	// GetCustomer fetches the remote customer record.
	GetCustomer(ctx context.Context, customerID string) (*CustomerResource, error)

	// RegisterCard starts a hosted card registration flow for the customer.
	RegisterCard(ctx context.Context, customerID string) (*CardRegistration, error)

	// UnregisterCard removes the customer's registered card.
	UnregisterCard(ctx context.Context, customerID string) (*CustomerResource, error)

	// Charge bills the customer's card, or their email when no card exists.
	Charge(ctx context.Context, attrs Attributes) (*Resource, error)
}

// SubscriptionAPI groups the remote subscription operations.
type SubscriptionAPI interface {
	// CreateSubscription subscribes a customer to a plan.
	CreateSubscription(ctx context.Context, attrs Attributes) (*SubscriptionResource, error)

	// UpdateSubscription changes the trial period of a subscription.
	UpdateSubscription(ctx context.Context, subscriptionID string, attrs Attributes) (*SubscriptionResource, error)

	// CancelSubscription cancels at the end of the current cycle, or
	// immediately when now is true. The core passes the flag through without
	// interpreting the difference.
	CancelSubscription(ctx context.Context, subscriptionID string, now bool) (*SubscriptionResource, error)

	// GetSubscription fetches one subscription.
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionResource, error)

	// ListByPlan returns one page of the customer's subscriptions for a plan.
	// The provider requires a non-empty name filter.
	ListByPlan(ctx context.Context, filter ListFilter) (*Page, error)
}

// CouponAPI groups the remote coupon operations on subscriptions.
type CouponAPI interface {
	AddCoupon(ctx context.Context, subscriptionID, couponID string) (*SubscriptionResource, error)
	RemoveCoupon(ctx context.Context, subscriptionID string) (*SubscriptionResource, error)
}

// PaymentAPI resolves payment notifications by their transaction token.
type PaymentAPI interface {
	Get(ctx context.Context, token string) (*Resource, error)
}

// RefundAPI resolves refund notifications by their transaction token.
type RefundAPI interface {
	Get(ctx context.Context, token string) (*Resource, error)
}

// PlanAPI exposes remote plan lookups.
type PlanAPI interface {
	Get(ctx context.Context, planID string) (*Resource, error)
}

// InvoiceAPI exposes remote invoice lookups.
type InvoiceAPI interface {
	Get(ctx context.Context, invoiceID string) (*Resource, error)
}

// SettlementAPI exposes remote settlement lookups.
type SettlementAPI interface {
	Get(ctx context.Context, settlementID string) (*Resource, error)
}
