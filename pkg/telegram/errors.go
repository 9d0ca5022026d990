package telegram

import "errors"

// Sentinel errors for dispatch operations.
var (
	// ErrUnknownBot indicates a bot name that is not in the configuration.
	// Errors carrying it also match botapi.ErrInvalidArgument.
	ErrUnknownBot = errors.New("telegram: unknown bot")

	// ErrNoBots indicates a configuration with no bots at all.
	ErrNoBots = errors.New("telegram: no bots configured")
)
