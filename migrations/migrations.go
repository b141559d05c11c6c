// Package migrations embeds the SQL schema for both supported databases.
package migrations

import "embed"

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

// FS holds postgres/*.sql and sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
