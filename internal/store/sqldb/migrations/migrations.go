// Package migrations embeds the goose schema migrations for the Quiver
// database. The SQL is written to the portable subset accepted by both
// sqlite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
