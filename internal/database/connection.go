package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// GormConfig translates driver errors so unique violations surface as
// gorm.ErrDuplicatedKey regardless of the backend.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// connectDelays is the wait before each retry; its length bounds the attempts.
var connectDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}

// InitDatabase opens postgres or sqlite and pings it, retrying with
// backoff while the server is unreachable, then tunes the pool.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	dsn := cfg.DSN()
	if _, err := dialectorFor(driver, dsn); err != nil {
		return nil, err
	}

	entry := log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	})
	entry.Info("Connecting to database")

	attempts := len(connectDelays) + 1
	for attempt := 1; ; attempt++ {
		db, err := open(driver, dsn)
		if err == nil {
			sqlDB, _ := db.DB()
			configureConnectionPool(sqlDB, driver)
			entry.WithField("attempt", attempt).Info("Database ready")
			return db, nil
		}
		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}

		delay := connectDelays[attempt-1]
		entry.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": delay,
		}).Warn("Database not reachable")
		time.Sleep(delay)
	}
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", driver)
	}
}

// open connects and pings once
func open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, GormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// configureConnectionPool sets pool limits. SQLite takes a single writer, so
// its pool is pinned to one connection to avoid "database is locked".
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen, maxIdle := 25, 5
	if driver == "sqlite" || driver == "" {
		maxOpen, maxIdle = 1, 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    maxIdle,
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}
