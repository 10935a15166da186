package flow

import "time"

// Attributes carries request parameters for remote calls. Keys follow the
// provider's wire names (customerId, planId, trial_period_days, ...).
type Attributes map[string]any

// Merge returns a copy of base with extras applied on top. Keys present in
// extras win over base.
func (a Attributes) Merge(extras Attributes) Attributes {
	merged := make(Attributes, len(a)+len(extras))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range extras {
		merged[k] = v
	}
	return merged
}

// Resource is a generic remote object returned by lookups that the core does
// not interpret beyond identity and existence (payments, refunds, charges,
// invoices, settlements).
type Resource struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Exists bool           `json:"exists"`
	Raw    map[string]any `json:"raw,omitempty"`
}

// CustomerResource is the provider's view of a customer. Exists reports
// whether the provider accepted or still retains the customer.
type CustomerResource struct {
	CustomerID   string
	Name         string
	Email        string
	ExternalID   string
	CardBrand    string
	CardLastFour string
	Exists       bool
}

// HasCard reports whether the remote customer has a registered card.
func (c CustomerResource) HasCard() bool {
	return c.CardBrand != "" || c.CardLastFour != ""
}

// CardRegistration is the provider's response to a card registration request:
// a hosted URL the payer must visit, plus the transaction token.
type CardRegistration struct {
	URL   string
	Token string
}

// SubscriptionResource is the provider's view of one subscription.
type SubscriptionResource struct {
	SubscriptionID string
	PlanID         string
	CustomerID     string
	CouponID       string
	TrialStart     *time.Time
	TrialEnd       *time.Time
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Exists         bool
}

// Page is one page of a remote paged listing.
type Page struct {
	Items   []SubscriptionResource
	Total   int
	HasMore bool
}

// ListFilter narrows a remote subscription listing. The provider requires a
// non-empty Name filter to scope results to one customer.
type ListFilter struct {
	PlanID string
	Name   string
	Status int
	Limit  int
	Start  int
}
