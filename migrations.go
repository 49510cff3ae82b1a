// Package userdir holds repository-level assets shared by the binaries and
// storage backends, such as the embedded SQL migrations.
package userdir

import "embed"

// Migrations contains the goose migrations under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
