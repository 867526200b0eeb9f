package domain

// DatabaseDriver represents the type of database engine.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// DatabaseConnection describes a remote database holding documents.
// The password is stored separately in the SecretStore (e.g. macOS Keychain).
type DatabaseConnection struct {
	Driver   DatabaseDriver `json:"driver"`
	Host     string         `json:"host"`     // hostname, URI (mongodb) or file path (sqlite)
	Port     int            `json:"port"`     // 0 for the driver default
	Database string         `json:"database"` // db name or empty for sqlite
	Username string         `json:"username"`
	SSLMode  string         `json:"sslMode"`
	Table    string         `json:"table"` // table or collection holding documents
}
