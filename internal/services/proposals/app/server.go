// Package server wires the proposals runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	proposalsv1 "github.com/louisbranch/proposals/api/proposals/v1"
	platformgrpc "github.com/louisbranch/proposals/internal/platform/grpc"
	_ "github.com/louisbranch/proposals/internal/platform/grpc/jsoncodec"
	"github.com/louisbranch/proposals/internal/platform/timeouts"
	proposalservice "github.com/louisbranch/proposals/internal/services/proposals/api/grpc/proposals"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
	"github.com/louisbranch/proposals/internal/services/proposals/eligibility"
	"github.com/louisbranch/proposals/internal/services/proposals/intake"
	"github.com/louisbranch/proposals/internal/services/proposals/metrics"
	"github.com/louisbranch/proposals/internal/services/proposals/storage"
	proposalspostgres "github.com/louisbranch/proposals/internal/services/proposals/storage/postgres"
	proposalssqlite "github.com/louisbranch/proposals/internal/services/proposals/storage/sqlite"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds everything the proposals server needs to start.
type Config struct {
	// Addr is the gRPC listen address.
	Addr                  string
	DBDriver              string
	DBPath                string
	DBDSN                 string
	EligibilityURL        string
	EligibilityTimeout    time.Duration
	TxTimeout             time.Duration
	AcceptedDocumentKinds []string
	// MetricsAddr enables the HTTP metrics listener when set.
	MetricsAddr string
	Logger      *slog.Logger
}

// Server hosts the proposals gRPC API, its storage and the metrics listener.
type Server struct {
	listener        net.Listener
	grpcServer      *grpc.Server
	health          *health.Server
	store           storage.Backend
	metricsListener net.Listener
	metricsServer   *http.Server
	logger          *slog.Logger
}

// New creates a configured proposals server.
func New(ctx context.Context, cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	kinds, err := parseDocumentKinds(cfg.AcceptedDocumentKinds)
	if err != nil {
		return nil, err
	}

	submitter, err := eligibility.NewClient(cfg.EligibilityURL,
		eligibility.WithTimeout(cfg.EligibilityTimeout),
		eligibility.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("configure eligibility client: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	intakeMetrics := metrics.New(registry)

	coordinator, err := intake.New(store, submitter,
		intake.WithLogger(logger),
		intake.WithMetrics(intakeMetrics),
		intake.WithEligibilityTimeout(cfg.EligibilityTimeout),
		intake.WithAcceptedDocumentKinds(kinds...),
	)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("configure intake: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(platformgrpc.LocaleUnaryInterceptor()),
	)
	healthServer := health.NewServer()
	proposalsv1.RegisterProposalServiceServer(grpcServer, proposalservice.NewService(coordinator, logger))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(proposalsv1.ProposalService_ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	s := &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		logger:     logger,
	}

	if strings.TrimSpace(cfg.MetricsAddr) != "" {
		metricsListener, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("listen metrics on %s: %w", cfg.MetricsAddr, err)
		}
		s.metricsListener = metricsListener
		s.metricsServer = &http.Server{
			Handler:           newOperatorRouter(registry, store),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}
	return s, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// MetricsAddr returns the metrics listener address, or "" when disabled.
func (s *Server) MetricsAddr() string {
	if s == nil || s.metricsListener == nil {
		return ""
	}
	return s.metricsListener.Addr().String()
}

// Run creates and serves a proposals server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the gRPC and metrics listeners until ctx is cancelled or one fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("proposals server listening", "addr", s.Addr())
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	if s.metricsServer != nil {
		group.Go(func() error {
			s.logger.Info("metrics listening", "addr", s.MetricsAddr())
			if err := s.metricsServer.Serve(s.metricsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		s.shutdown()
		return nil
	})
	return group.Wait()
}

func (s *Server) shutdown() {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown metrics server", "error", err)
		}
	}
	s.grpcServer.GracefulStop()
}

// Close releases proposals server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.metricsServer != nil {
		_ = s.metricsServer.Close()
	}
	if s.metricsListener != nil {
		_ = s.metricsListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close proposal store", "error", err)
		}
		s.store = nil
	}
}

func newOperatorRouter(registry *prometheus.Registry, store storage.Backend) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func openStore(ctx context.Context, cfg Config) (storage.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "", DriverSQLite:
		path := cfg.DBPath
		if strings.TrimSpace(path) == "" {
			path = filepath.Join("data", "proposals.db")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := proposalssqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open proposals sqlite store: %w", err)
		}
		store.SetTxTimeout(cfg.TxTimeout)
		return store, nil
	case DriverPostgres:
		store, err := proposalspostgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open proposals postgres store: %w", err)
		}
		store.SetTxTimeout(cfg.TxTimeout)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.DBDriver)
	}
}

func parseDocumentKinds(raw []string) ([]domain.DocumentKind, error) {
	if len(raw) == 0 {
		return []domain.DocumentKind{domain.DocumentKindCPF, domain.DocumentKindCNPJ}, nil
	}
	kinds := make([]domain.DocumentKind, 0, len(raw))
	for _, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		kind, ok := domain.ParseDocumentKind(value)
		if !ok {
			return nil, fmt.Errorf("unsupported document kind %q", value)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, errors.New("at least one document kind must be accepted")
	}
	return kinds, nil
}
