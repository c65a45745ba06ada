// Package dbpool provides a unified database connection manager that abstracts
// away engine-specific details (SQLite, MySQL, Snowflake) and handles retry
// logic and connection pool settings.
//
// All code that needs a *sql.DB should go through DBManager instead of calling
// sql.Open directly. This gives us a single place to:
//   - switch between the local SQLite store and external engines
//   - add retry/backoff for transient open failures
//   - enforce connection pool settings
package dbpool

import (
	"database/sql"
	"fmt"
)

// Engine identifies the database engine to use.
type Engine string

const (
	EngineSQLite    Engine = "sqlite"
	EngineMySQL     Engine = "mysql"
	EngineSnowflake Engine = "snowflake"
)

// AccessMode controls whether the connection is read-only or read-write.
type AccessMode int

const (
	ModeReadWrite AccessMode = iota
	ModeReadOnly
)

// OpenOptions configures how a database connection is opened.
type OpenOptions struct {
	// Engine to use. Defaults to EngineSQLite if empty.
	Engine Engine
	// Path is the file path for SQLite. For MySQL and Snowflake it is the DSN.
	Path string
	// Memory opens a private in-memory SQLite database; Path is ignored.
	Memory bool
	// Mode controls read-only vs read-write access.
	Mode AccessMode
	// MaxRetries overrides the default retry count (0 = use default).
	MaxRetries int
	// RetryBaseMs overrides the base retry interval in milliseconds (0 = use default).
	RetryBaseMs int
}

// Logger is a simple logging function signature.
type Logger func(string)

// DBManager is the central connection manager.
type DBManager struct {
	logger Logger
	engine Engine // default engine for the application
}

// New creates a new DBManager with the given default engine and logger.
func New(defaultEngine Engine, logger Logger) *DBManager {
	if logger == nil {
		logger = func(string) {}
	}
	if defaultEngine == "" {
		defaultEngine = EngineSQLite
	}
	return &DBManager{
		engine: defaultEngine,
		logger: logger,
	}
}

// DefaultEngine returns the manager's default engine.
func (m *DBManager) DefaultEngine() Engine {
	return m.engine
}

// Open opens a database connection with the given options, retrying
// transient failures with linear backoff.
func (m *DBManager) Open(opts OpenOptions) (*sql.DB, error) {
	eng := opts.Engine
	if eng == "" {
		eng = m.engine
	}

	switch eng {
	case EngineSQLite:
		return m.openSQLite(opts)
	case EngineMySQL:
		return m.openDSN("mysql", opts)
	case EngineSnowflake:
		return m.openDSN("snowflake", opts)
	default:
		return nil, fmt.Errorf("dbpool: unsupported engine %q", eng)
	}
}

// OpenMemory opens a private in-memory SQLite database. Each call returns an
// independent database; the pool is pinned to a single connection so the
// memory database survives for the lifetime of the handle.
func (m *DBManager) OpenMemory() (*sql.DB, error) {
	return m.Open(OpenOptions{Engine: EngineSQLite, Memory: true, MaxRetries: 1})
}

// configurePool pins the pool to one connection. Required for in-memory
// SQLite (the database is per-connection) and keeps file locks predictable.
func configurePool(db *sql.DB) {
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)
}

// retryParams returns (maxRetries, baseMs) from opts or defaults.
func retryParams(opts OpenOptions) (int, int) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 8
	}
	baseMs := opts.RetryBaseMs
	if baseMs <= 0 {
		baseMs = 400
	}
	return maxRetries, baseMs
}
