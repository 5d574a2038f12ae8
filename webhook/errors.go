package webhook

import "errors"

// ErrTurnHandlerRequired is returned when a turn handler is not provided.
var ErrTurnHandlerRequired = errors.New("turn handler required")
