// Package migrations embeds the Postgres schema used by the postgres driver.
package migrations

import "embed"

// FS holds the *.up.sql, *.down.sql and 000_drop_all.sql files.
//
//go:embed *.sql
var FS embed.FS
