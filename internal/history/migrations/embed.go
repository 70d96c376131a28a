// Package migrations embeds the SQL schema of the run history database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
