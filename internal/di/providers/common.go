// Package providers contains dependency injection providers for the
// DriftPix server.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// ipcRequestsPerSecond throttles outbound identity-provider calls.
	ipcRequestsPerSecond = 5
	ipcBurst             = 10
)
