package dbclient

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"mdnotes/internal/domain"
)

// DefaultTable is the table or collection used when none is configured.
const DefaultTable = "documents"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Store is a remote domain.DocumentStore that owns a connection.
type Store interface {
	domain.DocumentStore

	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Close closes the connection.
	Close() error
}

// Open connects to the database described by conn and makes sure the
// documents table (or collection) exists.
// The password must be provided separately (from SecretStore).
func Open(ctx context.Context, conn *domain.DatabaseConnection, password string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := conn.Table
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var (
		s   Store
		err error
	)
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		s, err = newSQLStore(sqliteDialect, buildSQLiteDSN(conn), table)
	case domain.DatabaseDriverMySQL:
		s, err = newSQLStore(mysqlDialect, buildMySQLDSN(conn, password), table)
	case domain.DatabaseDriverPostgres:
		s, err = newSQLStore(postgresDialect, buildPostgresDSN(conn, password), table)
	case domain.DatabaseDriverMongoDB:
		s, err = newMongoStore(ctx, conn, password, table, logger)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
	if err != nil {
		return nil, err
	}

	if ss, ok := s.(*sqlStore); ok {
		if err := ss.ensureSchema(ctx); err != nil {
			ss.Close()
			return nil, err
		}
	}
	logger.Info("remote document store ready",
		zap.String("driver", string(conn.Driver)),
		zap.String("database", conn.Database),
		zap.String("table", table))
	return s, nil
}
