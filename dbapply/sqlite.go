package dbapply

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver
)

func openSQLite(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite3", dsn)
}
