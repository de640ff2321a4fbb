package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	proposalsv1 "github.com/louisbranch/proposals/api/proposals/v1"
	platformgrpc "github.com/louisbranch/proposals/internal/platform/grpc"
	"github.com/louisbranch/proposals/internal/platform/logging"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// analysisServer fakes the financial analysis service with a fixed answer.
func analysisServer(t *testing.T, statusCode int, result string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"idProposta":           body["idProposta"],
			"resultadoSolicitacao": result,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func startServer(t *testing.T, eligibilityURL string, metricsAddr string) (*Server, proposalsv1.ProposalServiceClient) {
	t.Helper()

	srv, err := New(context.Background(), Config{
		Addr:           "127.0.0.1:0",
		DBDriver:       DriverSQLite,
		DBPath:         filepath.Join(t.TempDir(), "proposals.db"),
		EligibilityURL: eligibilityURL,
		MetricsAddr:    metricsAddr,
		Logger:         logging.Discard(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := platformgrpc.DialWithHealth(ctx, srv.Addr(), 5*time.Second, nil, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		t.Fatalf("dial proposals server: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Fatalf("close gRPC connection: %v", closeErr)
		}
	})
	return srv, proposalsv1.NewProposalServiceClient(conn)
}

func validRequest() *proposalsv1.CreateProposalRequest {
	return &proposalsv1.CreateProposalRequest{
		Document: "63657520325",
		Name:     "A",
		Email:    "a@b.com",
		Address:  "X",
		Salary:   "30000.99",
	}
}

func TestServer_CreateEligibleProposal(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "SEM_RESTRICAO")
	_, client := startServer(t, analysis.URL, "")
	ctx := context.Background()

	created, err := client.CreateProposal(ctx, validRequest())
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	if created.GetId() == "" {
		t.Fatal("expected non-empty id")
	}
	if created.GetCreatedAt() == nil || created.GetCreatedAt().AsTime().IsZero() {
		t.Fatal("expected creation timestamp")
	}

	got, err := client.GetProposal(ctx, &proposalsv1.GetProposalRequest{Id: created.GetId()})
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if got.GetProposal().GetStatus() != proposalsv1.ProposalStatusEligible {
		t.Fatalf("status = %q, want ELIGIBLE", got.GetProposal().GetStatus())
	}
	if got.GetProposal().GetUpdatedAt() == nil {
		t.Fatal("expected updated_at after verdict")
	}
}

func TestServer_ProtobufCodecClientIsRejected(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "SEM_RESTRICAO")
	srv, _ := startServer(t, analysis.URL, "")

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out := new(proposalsv1.CreateProposalResponse)
	err = conn.Invoke(ctx, proposalsv1.ProposalService_CreateProposal_FullMethodName, validRequest(), out)
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %s, want INTERNAL (%v)", status.Code(err), err)
	}

	// The json subtype on the same connection works.
	out = new(proposalsv1.CreateProposalResponse)
	err = conn.Invoke(ctx, proposalsv1.ProposalService_CreateProposal_FullMethodName, validRequest(), out, grpc.CallContentSubtype("json"))
	if err != nil {
		t.Fatalf("create with json subtype: %v", err)
	}
	if out.GetId() == "" {
		t.Fatal("expected non-empty id")
	}
}

func TestServer_CreateRestrictedProposal(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "COM_RESTRICAO")
	_, client := startServer(t, analysis.URL, "")
	ctx := context.Background()

	created, err := client.CreateProposal(ctx, validRequest())
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	got, err := client.GetProposal(ctx, &proposalsv1.GetProposalRequest{Id: created.GetId()})
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if got.GetProposal().GetStatus() != proposalsv1.ProposalStatusNotEligible || got.GetProposal().GetUpdatedAt() == nil {
		t.Fatalf("proposal = %+v, want evaluated NOT_ELIGIBLE", got.GetProposal())
	}
}

func TestServer_DuplicateDocument(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "SEM_RESTRICAO")
	_, client := startServer(t, analysis.URL, "")
	ctx := context.Background()

	if _, err := client.CreateProposal(ctx, validRequest()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := client.CreateProposal(ctx, validRequest())
	st := status.Convert(err)
	if st.Code() != codes.AlreadyExists {
		t.Fatalf("code = %v, want AlreadyExists", st.Code())
	}
	if st.Message() != "proposal already exists" {
		t.Fatalf("message = %q", st.Message())
	}
}

func TestServer_InvalidRequestCarriesFieldViolations(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "SEM_RESTRICAO")
	_, client := startServer(t, analysis.URL, "")

	_, err := client.CreateProposal(context.Background(), &proposalsv1.CreateProposalRequest{Salary: "-1"})

	st := status.Convert(err)
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", st.Code())
	}
	var violations []*errdetails.BadRequest_FieldViolation
	for _, detail := range st.Details() {
		if br, ok := detail.(*errdetails.BadRequest); ok {
			violations = br.GetFieldViolations()
		}
	}
	counts := map[string]int{}
	for _, violation := range violations {
		counts[violation.GetField()]++
	}
	want := map[string]int{"document": 2, "name": 1, "email": 1, "address": 1, "salary": 1}
	if len(counts) != len(want) {
		t.Fatalf("violations by field = %v, want %v", counts, want)
	}
	for field, n := range want {
		if counts[field] != n {
			t.Fatalf("violations by field = %v, want %v", counts, want)
		}
	}
}

func TestServer_EligibilityFailureKeepsProposal(t *testing.T) {
	analysis := analysisServer(t, http.StatusServiceUnavailable, "")
	srv, client := startServer(t, analysis.URL, "127.0.0.1:0")
	ctx := context.Background()

	_, err := client.CreateProposal(ctx, validRequest())
	st := status.Convert(err)
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("code = %v, want FailedPrecondition", st.Code())
	}
	if strings.Contains(st.Message(), "503") {
		t.Fatalf("internal detail leaked: %q", st.Message())
	}

	// The row exists: a retry is rejected as a duplicate.
	_, err = client.CreateProposal(ctx, validRequest())
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("retry code = %v, want AlreadyExists", status.Code(err))
	}

	resp, err := http.Get("http://" + srv.MetricsAddr() + "/metrics")
	if err != nil {
		t.Fatalf("scrape metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `proposals_intake_total{outcome="eligibility_unavailable"} 1`) {
		t.Fatalf("metrics missing eligibility_unavailable outcome:\n%s", body)
	}
}

func TestServer_Healthz(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "SEM_RESTRICAO")
	srv, _ := startServer(t, analysis.URL, "127.0.0.1:0")

	resp, err := http.Get("http://" + srv.MetricsAddr() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestServer_GetUnknownProposal(t *testing.T) {
	analysis := analysisServer(t, http.StatusCreated, "SEM_RESTRICAO")
	_, client := startServer(t, analysis.URL, "")

	_, err := client.GetProposal(context.Background(), &proposalsv1.GetProposalRequest{Id: "missing"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{
		Addr:           "127.0.0.1:0",
		DBDriver:       "oracle",
		EligibilityURL: "http://localhost:9999",
	})
	if err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestParseDocumentKinds(t *testing.T) {
	kinds, err := parseDocumentKinds([]string{"cpf", " CNPJ "})
	if err != nil {
		t.Fatalf("parse kinds: %v", err)
	}
	if len(kinds) != 2 {
		t.Fatalf("kinds = %v", kinds)
	}
	if _, err := parseDocumentKinds([]string{"passport"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := parseDocumentKinds([]string{" "}); err == nil {
		t.Fatal("expected error when nothing is accepted")
	}
}
