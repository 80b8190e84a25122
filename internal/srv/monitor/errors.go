package monitor

import "errors"

var (
	ErrQueueFull       = errors.New("fetch queue full")
	ErrURLTooLong      = errors.New("url exceeds request buffer")
	ErrAlreadyStarted  = errors.New("fetch worker already started")
	ErrLowMemory       = errors.New("not enough free memory for payload")
	ErrPayloadTooLarge = errors.New("payload exceeds size limit")
	ErrHTTPStatus      = errors.New("unexpected http status")
	ErrEmptyPayload    = errors.New("empty payload")
)
