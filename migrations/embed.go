// Package migrations embeds the goose SQL migrations so the binary can
// migrate the database without shipping the files separately.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS
