package subscription

import "errors"

var (
	ErrMirrorNotFound = errors.New("subscription mirror row not found")
	ErrInvalidMode    = errors.New("invalid subscription mode")
)
