package dbapply

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "github.com/lib/pq"              // registers the "postgres" database/sql driver
)

func openPostgres(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
