// Package migrations embeds the versioned schema applied by `storefront migrate`.
package migrations

import "embed"

//go:embed *.sql atlas.sum
var FS embed.FS
