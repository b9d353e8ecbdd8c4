// Package migrations holds the versioned PostgreSQL schema.
package migrations

import "embed"

// FS contains every migration file
//
//go:embed *.sql
var FS embed.FS
