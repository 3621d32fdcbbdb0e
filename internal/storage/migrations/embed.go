// Package migrations embeds the SQL schema for the SQLite and Postgres stores.
package migrations

import "embed"

// FS embeds all SQL migration files for the SQLite storage layer.
//
//go:embed *.sql
var FS embed.FS

// PostgresFS embeds the Postgres migrations under postgres/.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS
