package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-organizer/backend/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// Options selects and tunes the underlying database.
type Options struct {
	Driver string
	// Path is the SQLite database file, or MemoryPath.
	Path string
	// DSN is the PostgreSQL connection string.
	DSN string
	// LogLevel controls gorm's SQL logging. Zero means silent.
	LogLevel logger.LogLevel
	// SkipMigrations leaves the schema untouched on open.
	SkipMigrations bool
}

// Store is the process-wide handle to the relational store. It is opened
// once at startup and passed explicitly to everything that needs it.
type Store struct {
	DB     *gorm.DB
	driver string
}

// New opens the store described by the application config and applies
// pending migrations.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	opts := Options{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.PostgresDSN()}
	if !cfg.Env.IsProduction() && cfg.Env != config.Test {
		opts.LogLevel = logger.Warn
	}

	store, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	switch opts.Driver {
	case DriverSQLite:
		log.Info("connected to database", zap.String("driver", opts.Driver), zap.String("path", opts.Path))
	default:
		log.Info("connected to database", zap.String("driver", opts.Driver), zap.String("host", cfg.DBHost))
	}
	return store, nil
}

// Open connects to the database and, unless disabled, migrates it to the
// latest schema version.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		dsn, err := sqliteDSN(opts.Path)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, errors.New("postgres DSN is required")
		}
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// A single connection keeps an in-memory database alive and
		// serializes writers on a file database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	store := &Store{DB: db, driver: opts.Driver}
	if opts.Driver == DriverSQLite {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" || path == MemoryPath {
		return "file::memory:?_foreign_keys=on", nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", nil
}

// Driver returns the name of the underlying database driver.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks if the database is accessible
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
