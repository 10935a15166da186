package billable

import (
	"context"
	"fmt"
)

// Info holds the billing mirror fields stored on the entity's own row.
// CardBrand and CardLastFour are either both empty or both set.
type Info struct {
	CustomerID   string
	CardBrand    string
	CardLastFour string
}

// HasCustomer reports whether a remote customer has been created for the entity.
func (i Info) HasCustomer() bool {
	return i.CustomerID != ""
}

// HasCard reports whether a card is registered for the customer.
func (i Info) HasCard() bool {
	return i.CardBrand != ""
}

// ExternalID correlates a local record with its remote customer without a
// foreign key. It is derived from where the record lives rather than stored.
type ExternalID struct {
	Storage string // table or collection name
	Key     string // primary key column
	Value   string // primary key value
}

func (id ExternalID) String() string {
	return fmt.Sprintf("%s|%s|%s", id.Storage, id.Key, id.Value)
}

// Entity is any local record acting as a payer. The embedding application
// implements it on its own model type; Billing returns a pointer so remote
// write-backs are reflected in memory as well as in the store.
type Entity interface {
	// EntityID is the value RawStore uses to address the entity's row.
	EntityID() string

	CustomerName() string
	CustomerEmail() string
	ExternalID() ExternalID

	// SyncOnCreate reports whether a remote customer should be created as
	// soon as the entity itself is created.
	SyncOnCreate() bool

	Billing() *Info
}

// RawStore persists billing mirror fields without going through the normal
// mutation path: no validation, no OnUpdated notification. The syncer uses it
// for every write-back so reconciliation never re-triggers itself through the
// lifecycle observer.
type RawStore interface {
	UpdateBillingInfo(ctx context.Context, entityID string, info Info) error
}
