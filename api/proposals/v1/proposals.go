// Package proposalsv1 defines the proposals.v1 wire contract.
//
// Messages are plain Go structs, not protobuf messages. They travel only with
// the JSON gRPC codec registered in internal/platform/grpc/jsoncodec, so every
// call must select the "json" content subtype (content-type
// application/grpc+json). Go clients pass grpc.CallContentSubtype("json"),
// which internal/platform/grpc.DefaultClientDialOptions sets; grpcurl and other
// tools must send application/grpc+json. A client using the default protobuf
// codec is rejected with INTERNAL. Status details (BadRequest, ErrorInfo,
// LocalizedMessage) remain standard google.rpc protobuf messages in the
// grpc-status-details-bin trailer.
package proposalsv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ProposalStatus is the wire form of a proposal status.
type ProposalStatus string

const (
	ProposalStatusUnspecified ProposalStatus = ""
	ProposalStatusPending     ProposalStatus = "PENDING"
	ProposalStatusEligible    ProposalStatus = "ELIGIBLE"
	ProposalStatusNotEligible ProposalStatus = "NOT_ELIGIBLE"
)

// CreateProposalRequest carries one proposal submission.
// Salary is a decimal rendered as a string.
type CreateProposalRequest struct {
	Document string `json:"document"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Salary   string `json:"salary"`
}

func (x *CreateProposalRequest) GetDocument() string {
	if x == nil {
		return ""
	}
	return x.Document
}

func (x *CreateProposalRequest) GetName() string {
	if x == nil {
		return ""
	}
	return x.Name
}

func (x *CreateProposalRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

func (x *CreateProposalRequest) GetAddress() string {
	if x == nil {
		return ""
	}
	return x.Address
}

func (x *CreateProposalRequest) GetSalary() string {
	if x == nil {
		return ""
	}
	return x.Salary
}

// CreateProposalResponse identifies the stored proposal.
type CreateProposalResponse struct {
	Id        string                 `json:"id"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
}

func (x *CreateProposalResponse) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

func (x *CreateProposalResponse) GetCreatedAt() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.CreatedAt
}

// GetProposalRequest looks a proposal up by id.
type GetProposalRequest struct {
	Id string `json:"id"`
}

func (x *GetProposalRequest) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

// GetProposalResponse returns one stored proposal.
type GetProposalResponse struct {
	Proposal *Proposal `json:"proposal,omitempty"`
}

func (x *GetProposalResponse) GetProposal() *Proposal {
	if x == nil {
		return nil
	}
	return x.Proposal
}

// Proposal is the wire form of a stored proposal.
// UpdatedAt stays nil until an eligibility verdict was recorded.
type Proposal struct {
	Id        string                 `json:"id"`
	Document  string                 `json:"document"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	Address   string                 `json:"address"`
	Salary    string                 `json:"salary"`
	Status    ProposalStatus         `json:"status"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

func (x *Proposal) GetId() string {
	if x == nil {
		return ""
	}
	return x.Id
}

func (x *Proposal) GetDocument() string {
	if x == nil {
		return ""
	}
	return x.Document
}

func (x *Proposal) GetStatus() ProposalStatus {
	if x == nil {
		return ProposalStatusUnspecified
	}
	return x.Status
}

func (x *Proposal) GetCreatedAt() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.CreatedAt
}

func (x *Proposal) GetUpdatedAt() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.UpdatedAt
}
