// Package migrations embeds the SQL schema so server binaries migrate
// themselves at boot.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
