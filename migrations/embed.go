// Package migrations holds the PostgreSQL schema and applies it.
package migrations

import "embed"

// FS carries both directions; Up only reads the *.up.sql files.
//
//go:embed *.sql
var FS embed.FS
