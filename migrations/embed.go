// Package migrations embeds the SQL schema migrations so that binaries can
// apply them without shipping the directory alongside.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
