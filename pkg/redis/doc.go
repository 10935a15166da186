// Package redis connects to the Redis server backing the out-of-process
// webhook event bus. Connect retries within a timeout so restarts tolerate a
// briefly unavailable server.
package redis
