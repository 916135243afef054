package storage

import (
	"embed"
	"io/fs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// SQLiteMigrations returns the embedded SQLite migration set.
func SQLiteMigrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations/sqlite")
	if err != nil {
		panic(err)
	}
	return sub
}

// PostgresMigrations returns the embedded PostgreSQL migration set.
func PostgresMigrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations/postgres")
	if err != nil {
		panic(err)
	}
	return sub
}
