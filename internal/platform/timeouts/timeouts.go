// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// GRPCRequest caps the time allowed for a single CLI gRPC request.
const GRPCRequest = 30 * time.Second

// EligibilityRequest is the default cap on one call to the financial
// analysis service. Expiry is reported like an unexpected status.
const EligibilityRequest = 5 * time.Second

// UnitOfWork is the default cap on one intake transaction. It must exceed
// EligibilityRequest because the external call runs inside the unit.
const UnitOfWork = 15 * time.Second

// StoreLockWait caps how long a unit of work waits for the database write
// lock before it starts. The unit-of-work deadline starts once the lock is held.
const StoreLockWait = 10 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
