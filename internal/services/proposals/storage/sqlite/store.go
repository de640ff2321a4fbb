// Package sqlite provides a SQLite-backed proposal storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/proposals/internal/platform/storage/migrate"
	"github.com/louisbranch/proposals/internal/services/proposals/domain"
	"github.com/louisbranch/proposals/internal/services/proposals/storage"
	"github.com/louisbranch/proposals/internal/services/proposals/storage/sqlite/migrations"
	"github.com/shopspring/decimal"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Writers take the database lock at BEGIN so the document check and insert
// of one unit cannot interleave with another unit's. busy_timeout bounds the
// wait for that lock.
const dsnFormat = "%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists proposals in SQLite.
type Store struct {
	sqlDB     *sql.DB
	txTimeout time.Duration
}

type options struct {
	lockTimeout time.Duration
}

// Option configures Open.
type Option func(*options)

// WithLockTimeout bounds how long a unit of work waits for the write lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.lockTimeout = timeout
		}
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite proposal store and applies embedded migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	o := options{lockTimeout: storage.DefaultLockTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	sqlDB, err := sql.Open("sqlite", dsn(path, o.lockTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	ctx := context.Background()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, sqlDB, migrate.SQLite, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, txTimeout: storage.DefaultTxTimeout}, nil
}

func dsn(path string, lockTimeout time.Duration) string {
	return fmt.Sprintf(dsnFormat, filepath.Clean(path), lockTimeout.Milliseconds())
}

// SetTxTimeout overrides the timeout applied to each unit of work once it began.
func (s *Store) SetTxTimeout(timeout time.Duration) {
	if s != nil && timeout > 0 {
		s.txTimeout = timeout
	}
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RunInTx runs fn inside one SQLite transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, store storage.ProposalStore) error) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	// BEGIN waits for the write lock up to busy_timeout.
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		if isBusy(err) {
			return fmt.Errorf("begin transaction: %w", storage.ErrBusy)
		}
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

// SaveProposal inserts one proposal outside any unit of work.
func (s *Store) SaveProposal(ctx context.Context, proposal domain.Proposal) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return saveProposal(ctx, s.sqlDB, proposal)
}

// ExistsByDocument reports whether a proposal holds document.
func (s *Store) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	return existsByDocument(ctx, s.sqlDB, document)
}

// GetProposal returns one proposal by id.
func (s *Store) GetProposal(ctx context.Context, id string) (domain.Proposal, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Proposal{}, fmt.Errorf("storage is not configured")
	}
	return getProposal(ctx, s.sqlDB, id)
}

// UpdateProposalStatus records a verdict outside any unit of work.
func (s *Store) UpdateProposalStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return updateProposalStatus(ctx, s.sqlDB, id, status, updatedAt)
}

// txStore is the ProposalStore view handed to RunInTx callbacks.
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
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(proposal.ID)
	if id == "" {
		return fmt.Errorf("proposal id is required")
	}
	if strings.TrimSpace(proposal.Document) == "" {
		return fmt.Errorf("document is required")
	}
	createdAt := proposal.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := proposal.Status
	if status == "" || status == domain.StatusPending {
		status = domain.StatusNotEligible
	}
	var updatedAt sql.NullInt64
	if proposal.UpdatedAt != nil {
		updatedAt = sql.NullInt64{Int64: toMillis(*proposal.UpdatedAt), Valid: true}
	}

	_, err := q.ExecContext(
		ctx,
		`INSERT INTO proposals (
		   id,
		   document,
		   document_kind,
		   name,
		   email,
		   address,
		   salary,
		   status,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		proposal.Document,
		string(proposal.DocumentKind),
		proposal.Name,
		proposal.Email,
		proposal.Address,
		proposal.Salary.String(),
		string(status),
		toMillis(createdAt),
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
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var found int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM proposals WHERE document = ? LIMIT 1`, document).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check proposal document: %w", err)
	}
	return true, nil
}

func getProposal(ctx context.Context, q queryer, id string) (domain.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return domain.Proposal{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Proposal{}, fmt.Errorf("proposal id is required")
	}

	var (
		proposal     domain.Proposal
		documentKind string
		salary       string
		status       string
		createdAt    int64
		updatedAt    sql.NullInt64
	)
	err := q.QueryRowContext(
		ctx,
		`SELECT id, document, document_kind, name, email, address, salary, status, created_at, updated_at
		 FROM proposals
		 WHERE id = ?`,
		id,
	).Scan(
		&proposal.ID,
		&proposal.Document,
		&documentKind,
		&proposal.Name,
		&proposal.Email,
		&proposal.Address,
		&salary,
		&status,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Proposal{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}

	proposal.DocumentKind = domain.DocumentKind(documentKind)
	proposal.Salary, err = decimal.NewFromString(salary)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("parse proposal salary: %w", err)
	}
	proposal.Status, err = domain.ParseStatus(status)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("parse proposal status %q: %w", status, err)
	}
	proposal.CreatedAt = fromMillis(createdAt)
	if updatedAt.Valid {
		value := fromMillis(updatedAt.Int64)
		proposal.UpdatedAt = &value
	}
	return proposal, nil
}

func updateProposalStatus(ctx context.Context, q queryer, id string, status domain.Status, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := q.ExecContext(
		ctx,
		`UPDATE proposals SET status = ?, updated_at = ? WHERE id = ?`,
		string(status),
		toMillis(updatedAt),
		id,
	)
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
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "proposals.document")
}

func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3lib.SQLITE_BUSY
	}
	return strings.Contains(strings.ToLower(err.Error()), "database is locked")
}

var (
	_ storage.Backend       = (*Store)(nil)
	_ storage.ProposalStore = txStore{}
)
