// Package intake runs the proposal intake transaction.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/louisbranch/proposals/internal/platform/errors"
	"github.com/louisbranch/proposals/internal/platform/id"
	"github.com/louisbranch/proposals/internal/platform/timeouts"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
	"github.com/louisbranch/proposals/internal/services/proposals/eligibility"
	"github.com/louisbranch/proposals/internal/services/proposals/metrics"
	"github.com/louisbranch/proposals/internal/services/proposals/storage"
)

var errNoTimeForEligibility = errors.New("unit of work has no time left for the eligibility call")

// Store reads proposals and opens units of work.
type Store interface {
	storage.ProposalStore
	storage.UnitOfWork
}

// Coordinator validates, stores and evaluates proposals.
type Coordinator struct {
	store     Store
	submitter eligibility.Submitter
	accepted  map[domain.DocumentKind]bool
	newID     func() (string, error)
	clock     func() time.Time
	// eligibilityTimeout is the time one Submit may take.
	eligibilityTimeout time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(c *Coordinator) {
		c.newID = newID
	}
}

// WithEligibilityTimeout declares how long one eligibility call may take.
// A unit of work with less time left skips the call and fails as busy.
func WithEligibilityTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.eligibilityTimeout = timeout
		}
	}
}

// WithAcceptedDocumentKinds restricts which document kinds may apply.
// Both CPF and CNPJ are accepted by default.
func WithAcceptedDocumentKinds(kinds ...domain.DocumentKind) Option {
	return func(c *Coordinator) {
		c.accepted = make(map[domain.DocumentKind]bool, len(kinds))
		for _, kind := range kinds {
			c.accepted[kind] = true
		}
	}
}

// New builds a Coordinator.
func New(store Store, submitter eligibility.Submitter, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("proposal store is required")
	}
	if submitter == nil {
		return nil, errors.New("eligibility submitter is required")
	}
	c := &Coordinator{
		store:     store,
		submitter: submitter,
		accepted: map[domain.DocumentKind]bool{
			domain.DocumentKindCPF:  true,
			domain.DocumentKindCNPJ: true,
		},
		newID:              id.NewID,
		clock:              time.Now,
		eligibilityTimeout: timeouts.EligibilityRequest,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create runs one intake. The returned error is always an *apperrors.Error.
//
// When the analysis service gives no verdict the proposal stays stored at
// NOT_ELIGIBLE with no UpdatedAt and CodeEligibilityUnavailable is returned.
func (c *Coordinator) Create(ctx context.Context, in domain.Input) (domain.Proposal, error) {
	start := time.Now()

	validated, violations := domain.Validate(in)
	if len(violations) > 0 {
		c.metrics.ObserveIntake(metrics.OutcomeInvalid, start)
		c.logger.InfoContext(ctx, "proposal rejected", "outcome", metrics.OutcomeInvalid, "violations", len(violations))
		return domain.Proposal{}, apperrors.WithViolations("proposal validation failed", violations)
	}
	if !c.accepted[validated.DocumentKind] {
		c.metrics.ObserveIntake(metrics.OutcomeDocumentKindRejected, start)
		c.logger.InfoContext(ctx, "proposal rejected", "outcome", metrics.OutcomeDocumentKindRejected, "document_kind", validated.DocumentKind)
		return domain.Proposal{}, apperrors.WithMetadata(
			apperrors.CodeDocumentKindUnsupported,
			"document kind is not accepted",
			map[string]string{"DocumentKind": strings.ToUpper(string(validated.DocumentKind))},
		)
	}

	proposalID, err := c.newID()
	if err != nil {
		c.metrics.ObserveIntake(metrics.OutcomeError, start)
		return domain.Proposal{}, apperrors.Wrap(apperrors.CodeUnknown, "assign proposal id", err)
	}
	proposal := domain.NewProposal(proposalID, validated, c.clock())
	logger := c.logger.With("proposal_id", proposal.ID, "document_kind", proposal.DocumentKind)

	// Once the row is written the caller going away must not undo it.
	var submitErr error
	err = c.store.RunInTx(context.WithoutCancel(ctx), func(ctx context.Context, tx storage.ProposalStore) error {
		exists, err := tx.ExistsByDocument(ctx, proposal.Document)
		if err != nil {
			return fmt.Errorf("check document: %w", err)
		}
		if exists {
			return apperrors.New(apperrors.CodeProposalAlreadyExists, "proposal already exists")
		}
		if err := tx.SaveProposal(ctx, proposal); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return apperrors.Wrap(apperrors.CodeProposalAlreadyExists, "proposal already exists", err)
			}
			return fmt.Errorf("save proposal: %w", err)
		}

		// The whole call and the status write must fit in the unit's deadline.
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= c.eligibilityTimeout {
			return errNoTimeForEligibility
		}

		submitStart := time.Now()
		verdict, err := c.submitter.Submit(ctx, eligibility.Request{
			Document:   proposal.Document,
			Name:       proposal.Name,
			ProposalID: proposal.ID,
		})
		c.metrics.ObserveEligibility(verdict.String(), submitStart)
		if err != nil {
			submitErr = err
			return nil
		}
		status, ok := verdict.Status()
		if !ok {
			submitErr = fmt.Errorf("no status for verdict %s", verdict)
			return nil
		}
		if err := proposal.UpdateStatus(status, c.clock()); err != nil {
			return fmt.Errorf("apply verdict: %w", err)
		}
		if err := tx.UpdateProposalStatus(ctx, proposal.ID, proposal.Status, *proposal.UpdatedAt); err != nil {
			return fmt.Errorf("store verdict: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeProposalAlreadyExists {
			c.metrics.ObserveIntake(metrics.OutcomeDuplicate, start)
			logger.InfoContext(ctx, "proposal rejected", "outcome", metrics.OutcomeDuplicate)
			return domain.Proposal{}, appErr
		}
		if errors.Is(err, storage.ErrBusy) || errors.Is(err, errNoTimeForEligibility) {
			c.metrics.ObserveIntake(metrics.OutcomeBusy, start)
			logger.WarnContext(ctx, "proposal intake busy, nothing stored", "outcome", metrics.OutcomeBusy, "error", err)
			return domain.Proposal{}, apperrors.Wrap(apperrors.CodeIntakeBusy, "proposal intake busy", err)
		}
		c.metrics.ObserveIntake(metrics.OutcomeError, start)
		logger.ErrorContext(ctx, "proposal intake failed", "outcome", metrics.OutcomeError, "error", err)
		return domain.Proposal{}, apperrors.Wrap(apperrors.CodeUnknown, "proposal intake", err)
	}

	if submitErr != nil {
		c.metrics.ObserveIntake(metrics.OutcomeEligibilityUnavailable, start)
		logger.ErrorContext(ctx, "eligibility analysis failed, proposal kept at default status",
			"outcome", metrics.OutcomeEligibilityUnavailable,
			"error", submitErr,
		)
		return domain.Proposal{}, apperrors.Wrap(apperrors.CodeEligibilityUnavailable, "submit proposal for analysis", submitErr)
	}

	outcome := metrics.OutcomeNotEligible
	if proposal.Status == domain.StatusEligible {
		outcome = metrics.OutcomeEligible
	}
	c.metrics.ObserveIntake(outcome, start)
	logger.InfoContext(ctx, "proposal evaluated", "outcome", outcome)
	return proposal, nil
}

// Get returns one stored proposal. The returned error is always an *apperrors.Error.
func (c *Coordinator) Get(ctx context.Context, proposalID string) (domain.Proposal, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return domain.Proposal{}, apperrors.New(apperrors.CodeProposalIDMissing, "proposal id is required")
	}
	proposal, err := c.store.GetProposal(ctx, proposalID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Proposal{}, apperrors.WithMetadata(apperrors.CodeProposalNotFound, "proposal not found", map[string]string{"ProposalID": proposalID})
	}
	if err != nil {
		return domain.Proposal{}, apperrors.Wrap(apperrors.CodeUnknown, "get proposal", err)
	}
	return proposal, nil
}
