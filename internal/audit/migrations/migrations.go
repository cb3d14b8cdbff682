// Package migrations embeds the SQL migrations for the run history schema.
package migrations

import "embed"

// Migrations holds the goose migration files.
//
//go:embed *.sql
var Migrations embed.FS
