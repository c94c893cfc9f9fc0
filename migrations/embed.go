// Package migrations embeds the SQL schema migrations so binaries carry them.
package migrations

import "embed"

// FS holds every NNNNNN_name.up.sql / .down.sql pair in this directory
//
//go:embed *.sql
var FS embed.FS
