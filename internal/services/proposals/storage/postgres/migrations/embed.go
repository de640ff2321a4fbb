package migrations

import "embed"

// FS contains embedded PostgreSQL migrations for proposal storage.
//
//go:embed *.sql
var FS embed.FS
