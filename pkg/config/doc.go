// Package config loads configuration structs from environment variables,
// with an optional .env file for development. Structs declare their surface
// with `env` tags; required fields fail loading when absent, so
// misconfiguration is caught at startup rather than mid-request.
package config
