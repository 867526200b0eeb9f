package dbclient

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"mdnotes/internal/domain"
)

var mysqlDialect = dialect{
	driver:     "mysql",
	idType:     "VARCHAR(255)",
	textType:   "LONGTEXT",
	timeType:   "DATETIME(6)",
	dollarArgs: false,
}

// buildMySQLDSN formats the connection with the driver's own Config.
func buildMySQLDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = conn.Username
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conn.Host, strconv.Itoa(port))
	cfg.DBName = conn.Database
	cfg.ParseTime = true
	// report matched rows, so saving an unchanged document is not a miss
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if conn.SSLMode == "require" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}
