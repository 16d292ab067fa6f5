// Package migrations embeds the SQL schema migrations so the migrate CLI
// works without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
