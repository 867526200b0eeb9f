package dbclient

import (
	"net"
	"net/url"
	"strconv"

	"mdnotes/internal/domain"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	driver:     "postgres",
	idType:     "TEXT",
	textType:   "TEXT",
	timeType:   "TIMESTAMPTZ",
	dollarArgs: true,
}

// buildPostgresDSN returns a postgres:// URL; credentials are escaped so
// passwords with spaces or '@' survive.
func buildPostgresDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conn.Username, password),
		Host:     net.JoinHostPort(conn.Host, strconv.Itoa(port)),
		Path:     "/" + conn.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
