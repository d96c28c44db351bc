package sqliteutil

import (
	"database/sql"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens a sqlite database at the given path (or a remote
// libsql url) and applies the given schema. schemas are expected
// to be written with CREATE TABLE IF NOT EXISTS so reopening an
// existing database is a no-op.
func OpenDB(schema, path string) (*sql.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(path, "libsql://") ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") {
		driver = "libsql"
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
