package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/louisbranch/proposals/internal/platform/grpc/jsoncodec"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialStage describes where a dial attempt failed.
type DialStage string

const (
	// DialStageConnect indicates a client construction failure.
	DialStageConnect DialStage = "connect"
	// DialStageHealth indicates the health check failed.
	DialStageHealth DialStage = "health"
)

// DialError wraps dial and health check failures with a stage indicator.
type DialError struct {
	Stage DialStage
	Err   error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	if e == nil {
		return "gRPC dial error"
	}
	return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultClientDialOptions returns standard dial options for service clients.
// Calls use the JSON content subtype and carry OTel stats handlers so trace
// context propagates when a TracerProvider is registered.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		gogrpc.WithDefaultCallOptions(gogrpc.CallContentSubtype(jsoncodec.Name)),
	}
}

// DialWithHealth creates a client for addr and waits for the health check to serve.
// It closes the connection if the health check fails.
func DialWithHealth(ctx context.Context, addr string, dialTimeout time.Duration, logger *slog.Logger, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Err: err}
	}

	healthCtx := ctx
	if dialTimeout > 0 {
		var cancel context.CancelFunc
		healthCtx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}
	if err := WaitForHealth(healthCtx, conn, "", logger); err != nil {
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
