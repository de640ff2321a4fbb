// Package domain holds the proposal entity, its status transition and input validation.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the eligibility state of a proposal.
type Status string

const (
	// StatusPending is the state of a proposal that has not been stored yet.
	StatusPending Status = "PENDING"
	// StatusEligible marks a proposal the analysis service cleared.
	StatusEligible Status = "ELIGIBLE"
	// StatusNotEligible is both the stored default and the restricted verdict.
	StatusNotEligible Status = "NOT_ELIGIBLE"
)

// ParseStatus maps a stored status string back to a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusEligible, StatusNotEligible:
		return Status(raw), nil
	default:
		return "", ErrUnknownStatus
	}
}

var (
	// ErrStatusAlreadyDecided is returned when a verdict was already recorded.
	ErrStatusAlreadyDecided = errors.New("proposal status already decided")
	// ErrInvalidVerdict is returned for transitions to anything but a verdict.
	ErrInvalidVerdict = errors.New("invalid eligibility verdict")
	// ErrUnknownStatus is returned when a stored status is not recognized.
	ErrUnknownStatus = errors.New("unknown proposal status")
)

// Proposal is one credit proposal.
type Proposal struct {
	ID           string
	Document     string
	DocumentKind DocumentKind
	Name         string
	Email        string
	Address      string
	Salary       decimal.Decimal
	Status       Status
	CreatedAt    time.Time
	// UpdatedAt is nil until an eligibility verdict is recorded.
	UpdatedAt *time.Time
}

// TimePrecision is the resolution at which proposal timestamps are kept,
// matching what every store can hold.
const TimePrecision = time.Millisecond

// NewProposal builds an unsubmitted proposal from validated input.
// The stored default status is NOT_ELIGIBLE until a verdict overwrites it.
func NewProposal(id string, in Validated, now time.Time) Proposal {
	return Proposal{
		ID:           id,
		Document:     in.Document,
		DocumentKind: in.DocumentKind,
		Name:         in.Name,
		Email:        in.Email,
		Address:      in.Address,
		Salary:       in.Salary,
		Status:       StatusNotEligible,
		CreatedAt:    now.UTC().Truncate(TimePrecision),
	}
}

// UpdateStatus records the eligibility verdict. It may succeed once.
func (p *Proposal) UpdateStatus(verdict Status, at time.Time) error {
	if p.UpdatedAt != nil {
		return ErrStatusAlreadyDecided
	}
	if verdict != StatusEligible && verdict != StatusNotEligible {
		return ErrInvalidVerdict
	}
	updated := at.UTC().Truncate(TimePrecision)
	p.Status = verdict
	p.UpdatedAt = &updated
	return nil
}

// Evaluated reports whether a verdict was recorded.
func (p Proposal) Evaluated() bool {
	return p.UpdatedAt != nil
}
