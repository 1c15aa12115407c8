package dbapply

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
)

func openMySQL(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}
