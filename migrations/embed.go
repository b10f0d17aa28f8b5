// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests and server bootstrap.
package migrations

import (
	"embed"
	"io/fs"
)

// FS holds the *.sql migration files of every supported dialect, one
// directory per goose dialect name.
//
//go:embed postgres/*.sql sqlite3/*.sql
var FS embed.FS

// For returns the migrations of one goose dialect ("postgres" or "sqlite3")
// rooted so goose sees the .sql files at the top level.
func For(dialect string) (fs.FS, error) {
	return fs.Sub(FS, dialect)
}
