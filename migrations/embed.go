// Package migrations embeds the goose SQL migrations that are applied at
// application startup when database.migrate_on_start is enabled.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
