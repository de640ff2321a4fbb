// Package migrate applies embedded SQL migrations at most once per file.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

// Dialect captures the SQL differences between supported engines.
type Dialect struct {
	Name string
	// Bind returns the placeholder for the n-th (1-based) parameter.
	Bind func(n int) string
	// AppliedAtType is the column type used for the applied_at millis value.
	AppliedAtType string
	// RecordSuffix terminates the insert that records a migration so replays are ignored.
	RecordSuffix string
}

var (
	// SQLite binds with ? and ignores duplicate records with INSERT OR IGNORE semantics.
	SQLite = Dialect{
		Name:          "sqlite",
		Bind:          func(int) string { return "?" },
		AppliedAtType: "INTEGER",
		RecordSuffix:  "ON CONFLICT(name) DO NOTHING",
	}
	// Postgres binds with $n.
	Postgres = Dialect{
		Name:          "postgres",
		Bind:          func(n int) string { return fmt.Sprintf("$%d", n) },
		AppliedAtType: "BIGINT",
		RecordSuffix:  "ON CONFLICT (name) DO NOTHING",
	}
)

// Apply executes embedded migrations from root in file-name order.
func Apply(ctx context.Context, sqlDB *sql.DB, dialect Dialect, migrationFS fs.FS, root string) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}
	if dialect.Bind == nil {
		return fmt.Errorf("migration dialect is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	readRoot := strings.TrimSpace(root)
	if readRoot == "" {
		readRoot = "."
	}
	keyRoot := readRoot
	if keyRoot == "." {
		keyRoot = ""
	}

	entries, err := fs.ReadDir(migrationFS, readRoot)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at %s NOT NULL
);
`, migrationTable, dialect.AppliedAtType)
	if _, err := sqlDB.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	recordSQL := fmt.Sprintf(
		"INSERT INTO %s (name, applied_at) VALUES (%s, %s) %s",
		migrationTable, dialect.Bind(1), dialect.Bind(2), dialect.RecordSuffix,
	)

	for _, file := range sqlFiles {
		key := file
		if keyRoot != "" {
			key = path.Join(keyRoot, file)
		}

		content, err := fs.ReadFile(migrationFS, path.Join(readRoot, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		applied, err := isApplied(ctx, sqlDB, dialect, key)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration transaction %s: %w", file, err)
		}

		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}

		if _, err := tx.ExecContext(ctx, recordSQL, key, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}

	return nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

func isApplied(ctx context.Context, sqlDB *sql.DB, dialect Dialect, name string) (bool, error) {
	var found int
	row := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = "+dialect.Bind(1), name)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
