package appfs

import "embed"

// FS holds the SQL migrations of the postgres backend.
//go:embed migrations
var FS embed.FS
