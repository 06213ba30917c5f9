package server

import "errors"

// Telemetry server errors
var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrMaxClientsReached    = errors.New("maximum clients reached")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrListenerFailed       = errors.New("failed to create listener")
)
