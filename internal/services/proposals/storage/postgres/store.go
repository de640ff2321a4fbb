// Package postgres provides a PostgreSQL-backed proposal storage implementation.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/louisbranch/proposals/internal/platform/storage/migrate"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
	"github.com/louisbranch/proposals/internal/services/proposals/storage"
	"github.com/louisbranch/proposals/internal/services/proposals/storage/postgres/migrations"
	"github.com/shopspring/decimal"
)

const uniqueViolation = pq.ErrorCode("23505")

const (
	insertProposalSQL = `INSERT INTO proposals (id, document, document_kind, name, email, address, salary, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	existsSQL         = `SELECT EXISTS (SELECT 1 FROM proposals WHERE document = $1)`
	selectProposalSQL = `SELECT id, document, document_kind, name, email, address, salary, status, created_at, updated_at FROM proposals WHERE id = $1`
	updateStatusSQL   = `UPDATE proposals SET status = $1, updated_at = $2 WHERE id = $3`
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists proposals in PostgreSQL.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

// New wraps an open database handle. Migrations are not applied.
func New(db *sql.DB) *Store {
	return &Store{db: db, txTimeout: storage.DefaultTxTimeout}
}

// Open connects with dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	store := New(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate applies embedded migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if err := migrate.Apply(ctx, s.db, migrate.Postgres, migrations.FS, ""); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// SetTxTimeout overrides the timeout applied to each unit of work once it began.
func (s *Store) SetTxTimeout(timeout time.Duration) {
	if s != nil && timeout > 0 {
		s.txTimeout = timeout
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunInTx runs fn inside one PostgreSQL transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, store storage.ProposalStore) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	if err := fn(ctx, txStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) SaveProposal(ctx context.Context, proposal domain.Proposal) error {
	return saveProposal(ctx, s.db, proposal)
}

func (s *Store) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	return existsByDocument(ctx, s.db, document)
}

func (s *Store) GetProposal(ctx context.Context, id string) (domain.Proposal, error) {
	return getProposal(ctx, s.db, id)
}

func (s *Store) UpdateProposalStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
	return updateProposalStatus(ctx, s.db, id, status, updatedAt)
}

type txStore struct {
	q queryer
}

func (t txStore) SaveProposal(ctx context.Context, proposal domain.Proposal) error {
	return saveProposal(ctx, t.q, proposal)
}

func (t txStore) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	return existsByDocument(ctx, t.q, document)
}

func (t txStore) GetProposal(ctx context.Context, id string) (domain.Proposal, error) {
	return getProposal(ctx, t.q, id)
}

func (t txStore) UpdateProposalStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
	return updateProposalStatus(ctx, t.q, id, status, updatedAt)
}

func saveProposal(ctx context.Context, q queryer, proposal domain.Proposal) error {
	if strings.TrimSpace(proposal.ID) == "" {
		return fmt.Errorf("proposal id is required")
	}
	createdAt := proposal.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := proposal.Status
	if status == "" || status == domain.StatusPending {
		status = domain.StatusNotEligible
	}
	var updatedAt sql.NullTime
	if proposal.UpdatedAt != nil {
		updatedAt = sql.NullTime{Time: proposal.UpdatedAt.UTC(), Valid: true}
	}

	_, err := q.ExecContext(ctx, insertProposalSQL,
		proposal.ID,
		proposal.Document,
		string(proposal.DocumentKind),
		proposal.Name,
		proposal.Email,
		proposal.Address,
		proposal.Salary.String(),
		string(status),
		createdAt,
		updatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("save proposal: %w", err)
	}
	return nil
}

func existsByDocument(ctx context.Context, q queryer, document string) (bool, error) {
	var exists bool
	if err := q.QueryRowContext(ctx, existsSQL, document).Scan(&exists); err != nil {
		return false, fmt.Errorf("check proposal document: %w", err)
	}
	return exists, nil
}

func getProposal(ctx context.Context, q queryer, id string) (domain.Proposal, error) {
	var (
		proposal     domain.Proposal
		documentKind string
		salary       string
		status       string
		updatedAt    sql.NullTime
	)
	err := q.QueryRowContext(ctx, selectProposalSQL, id).Scan(
		&proposal.ID,
		&proposal.Document,
		&documentKind,
		&proposal.Name,
		&proposal.Email,
		&proposal.Address,
		&salary,
		&status,
		&proposal.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Proposal{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}

	proposal.DocumentKind = domain.DocumentKind(documentKind)
	if proposal.Salary, err = decimal.NewFromString(salary); err != nil {
		return domain.Proposal{}, fmt.Errorf("parse proposal salary: %w", err)
	}
	if proposal.Status, err = domain.ParseStatus(status); err != nil {
		return domain.Proposal{}, fmt.Errorf("parse proposal status %q: %w", status, err)
	}
	proposal.CreatedAt = proposal.CreatedAt.UTC()
	if updatedAt.Valid {
		value := updatedAt.Time.UTC()
		proposal.UpdatedAt = &value
	}
	return proposal, nil
}

func updateProposalStatus(ctx context.Context, q queryer, id string, status domain.Status, updatedAt time.Time) error {
	result, err := q.ExecContext(ctx, updateStatusSQL, string(status), updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update proposal status rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

var (
	_ storage.Backend       = (*Store)(nil)
	_ storage.ProposalStore = txStore{}
)
