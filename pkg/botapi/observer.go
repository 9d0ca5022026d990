package botapi

import (
	"context"
	"time"
)

// CallEvent describes one completed HTTP attempt.
type CallEvent struct {
	Method string

	// Attempt is 1 for the first request and 2 for the rate-limit retry.
	Attempt int

	// StatusCode is 0 when no response was received.
	StatusCode int

	Duration time.Duration
	Err      error
}

// Observer is notified around every HTTP attempt a Client makes. The
// returned context is used for the request, so tracing implementations can
// attach a span to it.
type Observer interface {
	StartCall(ctx context.Context, method string) (context.Context, func(CallEvent))
}

type nopObserver struct{}

func (nopObserver) StartCall(ctx context.Context, _ string) (context.Context, func(CallEvent)) {
	return ctx, func(CallEvent) {}
}
