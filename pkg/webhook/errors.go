package webhook

import "errors"

var (
	ErrBusClosed     = errors.New("webhook: event bus is closed")
	ErrPublishFailed = errors.New("webhook: failed to publish event")
)
