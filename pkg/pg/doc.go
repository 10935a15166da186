// Package pg wires the PostgreSQL side of the toolkit: a pgx pool with
// startup retries, goose migrations for the flow_subscriptions schema, a
// healthcheck closure, and error classifiers so callers can tell a unique
// constraint violation from a transport failure.
package pg
