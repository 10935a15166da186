// Package webhook authenticates and dispatches the asynchronous notifications
// the billing provider sends when a transaction resolves.
//
// The gate (Verify) is stateless and side-effect-free on rejection: a request
// is either the exact shape the provider produces - POST, a single body field
// named token holding a 40-character string, and a matching secret query
// parameter - or it is answered with the same generic 404 a nonexistent route
// would produce, leaking nothing about which check failed. When no secret is
// configured the gate passes everything through; that degraded mode matches
// the provider configuration and is intentional.
//
// Behind the gate, one dispatcher per endpoint fetches the resolved resource
// with a single remote lookup and emits one typed event on an EventBus.
// MemoryBus fans out in process; RedisBus publishes the JSON envelope to
// Redis pub/sub for out-of-process consumers.
package webhook
