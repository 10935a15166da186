package flow

import "errors"

var (
	ErrMissingAPIKey      = errors.New("flow: API key is required")
	ErrMissingAPISecret   = errors.New("flow: API secret is required")
	ErrInvalidEnvironment = errors.New("flow: environment must be sandbox or production")
	ErrMissingBaseURL     = errors.New("flow: base URL is required to derive webhook defaults")
)
