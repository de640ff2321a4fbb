package proposalctl

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	proposalsv1 "github.com/louisbranch/proposals/api/proposals/v1"
	apperrors "github.com/louisbranch/proposals/internal/platform/errors"
	_ "github.com/louisbranch/proposals/internal/platform/grpc/jsoncodec"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type fakeProposalServer struct {
	proposalsv1.UnimplementedProposalServiceServer
	mu         sync.Mutex
	lastCreate *proposalsv1.CreateProposalRequest
	locale     string
}

func (f *fakeProposalServer) seen() (*proposalsv1.CreateProposalRequest, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCreate, f.locale
}

func (f *fakeProposalServer) CreateProposal(ctx context.Context, in *proposalsv1.CreateProposalRequest) (*proposalsv1.CreateProposalResponse, error) {
	locale := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("accept-language"); len(values) > 0 {
			locale = values[0]
		}
	}
	f.mu.Lock()
	f.lastCreate = in
	f.locale = locale
	f.mu.Unlock()
	if in.GetDocument() == "" {
		return nil, apperrors.HandleError(apperrors.WithViolations("invalid", []apperrors.FieldViolation{
			{Field: "document", Description: "must not be blank"},
		}), locale)
	}
	return &proposalsv1.CreateProposalResponse{
		Id:        "p-1",
		CreatedAt: timestamppb.New(time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)),
	}, nil
}

func (f *fakeProposalServer) GetProposal(_ context.Context, in *proposalsv1.GetProposalRequest) (*proposalsv1.GetProposalResponse, error) {
	return &proposalsv1.GetProposalResponse{Proposal: &proposalsv1.Proposal{
		Id:        in.GetId(),
		Document:  "63657520325",
		Status:    proposalsv1.ProposalStatusEligible,
		Salary:    "30000.99",
		CreatedAt: timestamppb.New(time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)),
	}}, nil
}

func startFakeServer(t *testing.T) (string, *fakeProposalServer) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	fake := &fakeProposalServer{}
	grpcServer := grpc.NewServer()
	proposalsv1.RegisterProposalServiceServer(grpcServer, fake)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go func() { _ = grpcServer.Serve(listener) }()
	t.Cleanup(grpcServer.Stop)
	return listener.Addr().String(), fake
}

func TestParseConfig(t *testing.T) {
	t.Setenv("PROPOSALS_ADDR", "proposals:8095")
	fs := flag.NewFlagSet("proposalctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg, err := ParseConfig(fs, []string{"-document", "63657520325", "-salary", "10", "-json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "proposals:8095" || cfg.Document != "63657520325" || cfg.Salary != "10" || !cfg.JSONOutput {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %s", cfg.Timeout)
	}
}

func TestRunCreate(t *testing.T) {
	addr, fake := startFakeServer(t)
	var out bytes.Buffer

	err := Run(context.Background(), Config{
		Addr:     addr,
		Document: "63657520325",
		Name:     "A",
		Email:    "a@b.com",
		Address:  "X",
		Salary:   "30000.99",
		Locale:   "pt-BR",
	}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "id: p-1") {
		t.Fatalf("output = %q", out.String())
	}
	sent, locale := fake.seen()
	if sent.GetSalary() != "30000.99" {
		t.Fatalf("salary sent = %q", sent.GetSalary())
	}
	if locale != "pt-BR" {
		t.Fatalf("locale sent = %q", locale)
	}
}

func TestRunGetJSON(t *testing.T) {
	addr, _ := startFakeServer(t)
	var out bytes.Buffer

	if err := Run(context.Background(), Config{Addr: addr, GetID: "p-9", JSONOutput: true}, &out, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"id": "p-9"`) || !strings.Contains(out.String(), `"status": "ELIGIBLE"`) {
		t.Fatalf("output = %s", out.String())
	}
}

func TestRunReportsFieldViolations(t *testing.T) {
	addr, _ := startFakeServer(t)
	var errOut bytes.Buffer

	err := Run(context.Background(), Config{Addr: addr}, io.Discard, &errOut)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "InvalidArgument") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(errOut.String(), "document: must not be blank") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
