package sqlengine

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteDriverName is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriverName = "sqlite"

const sqliteDSNOptions = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// OpenSQLite opens a SQLite database for the order store, e.g. "orders.db" or ":memory:".
// Foreign keys are enforced and timestamps are written in a sortable format. The pool is limited
// to one connection: SQLite serializes writers anyway and in-memory databases are per connection.
func OpenSQLite(path string) (*sql.DB, error) {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	db, err := sql.Open(SQLiteDriverName, path+separator+sqliteDSNOptions)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	return db, nil
}
