package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"mdnotes/internal/logging"
)

// DataDirEnv overrides the default data directory.
const DataDirEnv = "MDNOTES_DATA_DIR"

// FileName is the config file looked up inside the data directory.
const FileName = "config.yaml"

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendFolder   = "folder"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Config is the on-disk application configuration.
type Config struct {
	DataDir string `yaml:"-"`

	Storage  Storage  `yaml:"storage"`
	Editor   Editor   `yaml:"editor"`
	Autosave Autosave `yaml:"autosave"`
	Backup   Backup   `yaml:"backup"`
	Log      Log      `yaml:"log"`
	MCP      MCP      `yaml:"mcp"`
}

type Storage struct {
	Backend string `yaml:"backend"`
	Folder  string `yaml:"folder"`

	// Remote backends. The password is read from the OS keychain.
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	SSLMode  string `yaml:"sslMode"`
	Table    string `yaml:"table"`
}

type Editor struct {
	// WrapWidth is the visual wrap width in cells; 0 means only hard newlines.
	WrapWidth int `yaml:"wrapWidth"`
	// Command is the external editor; empty falls back to $EDITOR, then nvim.
	Command string `yaml:"command"`
}

type Autosave struct {
	Delay time.Duration `yaml:"delay"`
}

type Backup struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
	Dir      string `yaml:"dir"`
}

type Log struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Verbose bool   `yaml:"verbose"`
	Path    string `yaml:"path"`
}

type MCP struct {
	// Listen is the address of the in-app MCP endpoint. Empty disables it;
	// agents can still run `mdnotes mcp` over stdio.
	Listen          string        `yaml:"listen"`
	ApprovalTimeout time.Duration `yaml:"approvalTimeout"`
}

// DefaultDataDir returns $MDNOTES_DATA_DIR or ~/.local/share/mdnotes.
func DefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mdnotes")
}

// Default returns the configuration used when no file exists.
func Default(dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		Storage: Storage{
			Backend: BackendSQLite,
			Folder:  filepath.Join(dataDir, "notes"),
			Table:   "documents",
		},
		Autosave: Autosave{Delay: 800 * time.Millisecond},
		Backup: Backup{
			Schedule: "@daily",
			Dir:      filepath.Join(dataDir, "backups"),
		},
		Log: Log{
			Enabled: true,
			Level:   "info",
			Path:    filepath.Join(dataDir, "mdnotes.log"),
		},
		MCP: MCP{ApprovalTimeout: 2 * time.Minute},
	}
}

// Load reads <dataDir>/config.yaml on top of the defaults.
// A missing file is not an error.
func Load(dataDir string) (*Config, error) {
	cfg := Default(dataDir)
	data, err := os.ReadFile(filepath.Join(dataDir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := ParseYAML(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseYAML decodes data into cfg and validates the result.
func ParseYAML(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks field combinations that would fail later at startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
	case BackendFolder:
		if c.Storage.Folder == "" {
			return errors.New("storage.folder is required for the folder backend")
		}
	case BackendMySQL, BackendPostgres, BackendMongoDB:
		if c.Storage.Host == "" || c.Storage.Database == "" {
			return fmt.Errorf("storage.host and storage.database are required for %s", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Editor.WrapWidth < 0 {
		return errors.New("editor.wrapWidth must not be negative")
	}
	if c.Autosave.Delay < 0 {
		return errors.New("autosave.delay must not be negative")
	}
	if c.Backup.Enabled && c.Backup.Schedule == "" {
		return errors.New("backup.schedule is required when backups are enabled")
	}
	if c.MCP.ApprovalTimeout < 0 {
		return errors.New("mcp.approvalTimeout must not be negative")
	}
	return nil
}

// Save writes the config back to <DataDir>/config.yaml.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.DataDir, FileName), data, 0o644)
}

// DBPath is the SQLite database holding settings, revisions and approvals.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mdnotes.db")
}

// LogOptions maps the log section onto logging.Options.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Enabled: c.Log.Enabled,
		Level:   c.Log.Level,
		Verbose: c.Log.Verbose,
		Path:    c.Log.Path,
	}
}
