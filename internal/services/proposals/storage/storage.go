// Package storage defines persistence contracts for proposal intake state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/proposals/internal/platform/timeouts"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
)

var (
	// ErrNotFound indicates a requested proposal is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a proposal with the same document is stored.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrBusy indicates a unit of work could not start within the lock wait bound.
	ErrBusy = errors.New("store is busy")
)

// DefaultTxTimeout bounds a unit of work once it has started.
const DefaultTxTimeout = timeouts.UnitOfWork

// DefaultLockTimeout bounds the wait for the write lock before a unit starts.
const DefaultLockTimeout = timeouts.StoreLockWait

// ProposalStore persists proposals.
type ProposalStore interface {
	// SaveProposal inserts a new proposal. A document collision returns ErrAlreadyExists.
	SaveProposal(ctx context.Context, proposal domain.Proposal) error
	ExistsByDocument(ctx context.Context, document string) (bool, error)
	// GetProposal returns ErrNotFound when id is unknown.
	GetProposal(ctx context.Context, id string) (domain.Proposal, error)
	// UpdateProposalStatus records a verdict. It returns ErrNotFound when id is unknown.
	UpdateProposalStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error
}

// UnitOfWork runs fn against a transactional view of the store. The
// transaction commits when fn returns nil and rolls back otherwise.
// The context handed to fn carries a deadline that starts after the
// transaction began, so time spent waiting for it is not charged to fn.
// RunInTx returns ErrBusy when the transaction could not begin in time.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store ProposalStore) error) error
}

// Backend is a store that also provides units of work and owns a connection.
type Backend interface {
	ProposalStore
	UnitOfWork
	Ping(ctx context.Context) error
	Close() error
}
