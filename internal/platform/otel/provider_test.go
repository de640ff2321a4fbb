package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/proposals/internal/platform/otel"
)

func TestConfigActive(t *testing.T) {
	cases := []struct {
		name string
		cfg  otel.Config
		want bool
	}{
		{name: "empty endpoint", cfg: otel.Config{}, want: false},
		{name: "explicitly disabled", cfg: otel.Config{Endpoint: "http://localhost:4318", Enabled: "FALSE"}, want: false},
		{name: "endpoint set", cfg: otel.Config{Endpoint: "http://localhost:4318"}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.Active(); got != tc.want {
				t.Fatalf("Active() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("PROPOSALS_OTEL_ENDPOINT", "")
	t.Setenv("PROPOSALS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no actual export happens.
	shutdown, err := otel.SetupWithConfig(context.Background(), "test-service", otel.Config{
		Endpoint: "http://192.0.2.1:4318",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := otel.SetupWithConfig(context.Background(), "noop-test", otel.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
