package dbclient

import (
	"mdnotes/internal/domain"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	driver:     "sqlite",
	idType:     "TEXT",
	textType:   "TEXT",
	timeType:   "DATETIME",
	dollarArgs: false,
}

// buildSQLiteDSN opens an external SQLite file in WAL mode with a busy timeout.
func buildSQLiteDSN(conn *domain.DatabaseConnection) string {
	return conn.Host + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
