// Package subscription manages the lifecycle of a customer's remote
// subscriptions and the local mirror rows that reflect them.
//
// A Manager operates in one of two modes. Single mode allows at most one
// active mirror row per customer and resolves operations against that row;
// multi mode allows any number of concurrent rows, addressed by subscription
// id. The mode changes only the guard predicates, not the reconciliation
// discipline: a row is written after a remote create whose result reports
// existence, its payload fields are refreshed after updates, and it is removed
// as soon as a cancellation result reports non-existence. A cancellation
// scheduled for period end reports existence and leaves the row untouched.
//
// Mirror rows live in the flow_subscriptions table; PGStore is the pgx-backed
// MirrorStore and the goose migration under internal/db/migrations defines
// the schema.
//
// Card-funded subscriptions go through billable.Syncer.SubscribeWithCard,
// which checks the payer's card before delegating to Manager.Subscribe.
package subscription
