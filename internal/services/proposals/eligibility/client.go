// Package eligibility submits proposals to the external financial analysis service.
package eligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/proposals/internal/platform/timeouts"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:generate mockgen -source=client.go -destination=mocks/client_mock.go -package=mocks Submitter

const submitPath = "/api/solicitacao"

// Verdicts returned by the analysis service.
const (
	resultNoRestriction   = "SEM_RESTRICAO"
	resultWithRestriction = "COM_RESTRICAO"
)

// Verdict is the outcome of an eligibility analysis.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictEligible
	VerdictNotEligible
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictEligible:
		return "eligible"
	case VerdictNotEligible:
		return "not_eligible"
	default:
		return "unknown"
	}
}

// Status maps the verdict to the proposal status it produces.
func (v Verdict) Status() (domain.Status, bool) {
	switch v {
	case VerdictEligible:
		return domain.StatusEligible, true
	case VerdictNotEligible:
		return domain.StatusNotEligible, true
	default:
		return "", false
	}
}

// Request identifies the proposal to analyse.
type Request struct {
	Document   string
	Name       string
	ProposalID string
}

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	// ErrorKindTransport covers connection failures and timeouts.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindUnexpectedStatus covers any response that carries no verdict.
	ErrorKindUnexpectedStatus ErrorKind = "unexpected_status"
)

// SubmitError reports a submission that produced no verdict.
type SubmitError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *SubmitError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("eligibility %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("eligibility %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Submitter requests an eligibility verdict for one proposal.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Verdict, error)
}

type submitRequest struct {
	Document   string `json:"documento"`
	Name       string `json:"nome"`
	ProposalID string `json:"idProposta"`
}

type submitResponse struct {
	ProposalID string `json:"idProposta"`
	Result     string `json:"resultadoSolicitacao"`
}

// Client calls the analysis service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each submission.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("eligibility base url is required")
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeouts.EligibilityRequest,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit posts the proposal and maps the answer to a Verdict. Any failure to
// obtain a verdict is a *SubmitError.
func (c *Client) Submit(ctx context.Context, req Request) (Verdict, error) {
	body, err := json.Marshal(submitRequest{
		Document:   req.Document,
		Name:       req.Name,
		ProposalID: req.ProposalID,
	})
	if err != nil {
		return VerdictUnknown, fmt.Errorf("encode eligibility request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(body))
	if err != nil {
		return VerdictUnknown, &SubmitError{Kind: ErrorKindTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return VerdictUnknown, &SubmitError{Kind: ErrorKindTransport, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return VerdictUnknown, &SubmitError{Kind: ErrorKindTransport, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.DebugContext(ctx, "eligibility response",
		"proposal_id", req.ProposalID,
		"status_code", resp.StatusCode,
		"duration", time.Since(start),
	)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var decoded submitResponse
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return VerdictUnknown, &SubmitError{Kind: ErrorKindUnexpectedStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		switch decoded.Result {
		case resultNoRestriction:
			return VerdictEligible, nil
		case resultWithRestriction:
			return VerdictNotEligible, nil
		default:
			return VerdictUnknown, &SubmitError{Kind: ErrorKindUnexpectedStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("unrecognized result %q", decoded.Result)}
		}
	case http.StatusUnprocessableEntity:
		return VerdictNotEligible, nil
	default:
		return VerdictUnknown, &SubmitError{Kind: ErrorKindUnexpectedStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response %s", resp.Status)}
	}
}

var _ Submitter = (*Client)(nil)
