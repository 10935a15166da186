// Package billable keeps a local payer record in sync with its remote
// customer at the billing provider.
//
// The embedding application implements Entity on its own model and RawStore on
// its persistence layer. RawStore is the raw-write capability: it persists the
// customer id and card fields without validation or change notification, which
// is what keeps remote write-backs from re-triggering the Observer and
// recursing into more remote calls.
//
// Guarded operations signal an unmet precondition with ok == false and a nil
// error; callers branch on it. Remote failures are returned unchanged, with no
// retry or suppression.
//
// Observer is the explicit replacement for framework-level model events: the
// persistence layer calls OnCreated, OnUpdated and OnDeleted after its own
// writes, and the observer decides whether a remote mutation is due.
package billable
