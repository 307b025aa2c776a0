// Package sqlstore implements the repository interfaces on top of gorm.
//
// Two drivers are supported:
//   - "sqlite": modernc.org/sqlite (pure Go), DSN is a file path or ":memory:"
//   - "postgres": gorm.io/driver/postgres (pgx), DSN is a libpq URL or key/value string
//
// The schema is owned by the embedded SQL migrations in migrations/, not by
// gorm's AutoMigrate. New runs them on every start.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// Registers the pure-Go driver under the name "sqlite".
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DriverFactory builds a gorm.Dialector for a DSN.
type DriverFactory func(dsn string) gorm.Dialector

var driverFactories = map[string]DriverFactory{
	DriverSQLite:   openSQLite,
	DriverPostgres: postgres.Open,
}

// openSQLite points gorm's sqlite dialector at the modernc driver instead of
// its default cgo one, and turns on the pragmas every connection needs.
func openSQLite(dsn string) gorm.Dialector {
	return gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite",
		DSN:        withSQLitePragmas(dsn),
	})
}

// withSQLitePragmas appends modernc's _pragma parameters so that every pooled
// connection, not just the first one, gets foreign keys, WAL and a busy timeout.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dsn != ":memory:" && !strings.Contains(dsn, "mode=memory") {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn
	}
	return dsn + sep + pragmas
}

// Dialector returns the gorm dialector registered for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	factory, ok := driverFactories[driver]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unsupported database driver %q", driver)
	}
	return factory(dsn), nil
}

// ensureSQLiteDir creates the parent directory of a plain sqlite file path.
func ensureSQLiteDir(cfg Config) error {
	if cfg.Driver != DriverSQLite || cfg.DSN == ":memory:" || strings.HasPrefix(cfg.DSN, "file:") {
		return nil
	}
	path, _, _ := strings.Cut(cfg.DSN, "?")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("sqlstore: creating database directory: %w", err)
	}
	return nil
}

// slowQueryThreshold is the duration above which gorm logs a query as slow.
const slowQueryThreshold = 200 * time.Millisecond

// newGormLogger sends gorm's warnings and errors through logger at WARN.
// A lookup that finds nothing is an expected outcome, not an error, so it is not logged.
func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Config selects the database.
type Config struct {
	Driver string
	DSN    string
	// SkipMigrations leaves the schema alone; the migrate command sets it.
	SkipMigrations bool
}

// DB owns the gorm handle and hands out the per-entity repositories.
type DB struct {
	gorm   *gorm.DB
	driver string
	logger *slog.Logger
}

// New opens the database, verifies the connection and applies pending migrations.
func New(cfg Config, logger *slog.Logger) (*DB, error) {
	dialector, err := Dialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := ensureSQLiteDir(cfg); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", cfg.Driver, err)
	}

	db := &DB{gorm: gdb, driver: cfg.Driver, logger: logger}

	if cfg.DSN == ":memory:" {
		// Every pooled connection to ":memory:" would see its own empty database.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: getting sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Ping(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.SkipMigrations {
		return db, nil
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	return db, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return fmt.Errorf("sqlstore: getting sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlstore: pinging database: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Driver is the configured driver name.
func (db *DB) Driver() string { return db.driver }

// Users returns the user repository.
func (db *DB) Users() *UserDB { return &UserDB{db: db.gorm} }

// Boards returns the board repository.
func (db *DB) Boards() *BoardDB { return &BoardDB{db: db.gorm} }
