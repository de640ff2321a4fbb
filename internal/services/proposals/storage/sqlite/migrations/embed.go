package migrations

import "embed"

// FS contains embedded SQLite migrations for proposal storage.
//
//go:embed *.sql
var FS embed.FS
