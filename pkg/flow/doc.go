// Package flow defines the typed contract this toolkit consumes from the Flow
// billing provider: resources, request attributes, and one small interface per
// remote capability group (customers, subscriptions, coupons, payments,
// refunds, plans, invoices, settlements).
//
// Transport is deliberately absent. An SDK binding implements these interfaces
// and owns retries, signing and timeouts; the packages in this module treat
// any error returned here as a remote failure to propagate unchanged. Keeping
// one interface per capability lets tests substitute a double for exactly the
// calls a component makes.
//
// Settings mirrors the provider configuration surface: environment and
// credentials, default return URLs, and webhook URLs that can be derived from
// a base URL and signed with the shared webhook secret.
package flow
