// Package proposals exposes the proposals.v1 gRPC operations.
package proposals

import (
	"context"
	"log/slog"

	proposalsv1 "github.com/louisbranch/proposals/api/proposals/v1"
	apperrors "github.com/louisbranch/proposals/internal/platform/errors"
	platformgrpc "github.com/louisbranch/proposals/internal/platform/grpc"
	"github.com/louisbranch/proposals/internal/platform/requestctx"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Intake is the application behavior behind the service.
type Intake interface {
	Create(ctx context.Context, in domain.Input) (domain.Proposal, error)
	Get(ctx context.Context, proposalID string) (domain.Proposal, error)
}

// Service exposes proposals.v1 gRPC operations.
type Service struct {
	proposalsv1.UnimplementedProposalServiceServer
	intake Intake
	logger *slog.Logger
}

// NewService creates a proposal service backed by intake.
func NewService(intake Intake, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{intake: intake, logger: logger}
}

// CreateProposal submits one proposal and answers with its id and creation time.
func (s *Service) CreateProposal(ctx context.Context, in *proposalsv1.CreateProposalRequest) (*proposalsv1.CreateProposalResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "create proposal request is required")
	}
	if s == nil || s.intake == nil {
		return nil, status.Error(codes.Internal, "proposal intake is not configured")
	}

	proposal, err := s.intake.Create(ctx, domain.Input{
		Document: in.GetDocument(),
		Name:     in.GetName(),
		Email:    in.GetEmail(),
		Address:  in.GetAddress(),
		Salary:   in.GetSalary(),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &proposalsv1.CreateProposalResponse{
		Id:        proposal.ID,
		CreatedAt: timestamppb.New(proposal.CreatedAt),
	}, nil
}

// GetProposal returns one stored proposal by id.
func (s *Service) GetProposal(ctx context.Context, in *proposalsv1.GetProposalRequest) (*proposalsv1.GetProposalResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get proposal request is required")
	}
	if s == nil || s.intake == nil {
		return nil, status.Error(codes.Internal, "proposal intake is not configured")
	}

	proposal, err := s.intake.Get(ctx, in.GetId())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &proposalsv1.GetProposalResponse{Proposal: proposalToProto(proposal)}, nil
}

// toStatus is the single translation point from intake failures to wire
// statuses. Unclassified failures are logged here and leave as UNKNOWN.
func (s *Service) toStatus(ctx context.Context, err error) error {
	if apperrors.CodeOf(err) == apperrors.CodeUnknown {
		s.logger.ErrorContext(ctx, "unclassified proposal failure", "error", err)
	}
	return apperrors.HandleError(err, localeFromContext(ctx))
}

func localeFromContext(ctx context.Context) string {
	if locale := requestctx.LocaleFromContext(ctx); locale != "" {
		return locale
	}
	if locale := platformgrpc.LocaleFromIncoming(ctx); locale != "" {
		return locale
	}
	return apperrors.DefaultLocale
}

func proposalToProto(proposal domain.Proposal) *proposalsv1.Proposal {
	out := &proposalsv1.Proposal{
		Id:        proposal.ID,
		Document:  proposal.Document,
		Name:      proposal.Name,
		Email:     proposal.Email,
		Address:   proposal.Address,
		Salary:    proposal.Salary.StringFixed(2),
		Status:    statusToProto(proposal.Status),
		CreatedAt: timestamppb.New(proposal.CreatedAt),
	}
	if proposal.UpdatedAt != nil {
		out.UpdatedAt = timestamppb.New(*proposal.UpdatedAt)
	}
	return out
}

func statusToProto(value domain.Status) proposalsv1.ProposalStatus {
	switch value {
	case domain.StatusPending:
		return proposalsv1.ProposalStatusPending
	case domain.StatusEligible:
		return proposalsv1.ProposalStatusEligible
	case domain.StatusNotEligible:
		return proposalsv1.ProposalStatusNotEligible
	default:
		return proposalsv1.ProposalStatusUnspecified
	}
}
