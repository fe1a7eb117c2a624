package database

import (
	"context"
	"fmt"
	"time"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	cgosqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studentms/internal/config"
	"studentms/internal/model"
)

const (
	DriverSQLite    = "sqlite"
	DriverSQLiteCgo = "sqlite3"
	DriverPostgres  = "postgres"
)

// Provider hands out one fresh connection per operation. Nothing is pooled
// or shared between calls.
type Provider struct {
	dialector func() gorm.Dialector
	driver    string
}

func Open(cfg *config.Config) (*Provider, error) {
	var dialector func() gorm.Dialector

	switch cfg.DBDriver {
	case DriverSQLite:
		dsn := cfg.DBPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		dialector = func() gorm.Dialector { return puresqlite.Open(dsn) }
	case DriverSQLiteCgo:
		dsn := cfg.DBPath + "?_busy_timeout=5000&_foreign_keys=on"
		dialector = func() gorm.Dialector { return cgosqlite.Open(dsn) }
	case DriverPostgres:
		dsn := cfg.PostgresDSN()
		dialector = func() gorm.Dialector { return postgres.Open(dsn) }
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	p := &Provider{dialector: dialector, driver: cfg.DBDriver}
	if err := p.Migrate(context.Background()); err != nil {
		return nil, err
	}
	logrus.WithField("driver", cfg.DBDriver).Info("database ready")
	return p, nil
}

func (p *Provider) Driver() string {
	return p.driver
}

// Migrate creates the students table when it does not exist yet.
func (p *Provider) Migrate(ctx context.Context) error {
	return p.With(ctx, func(db *gorm.DB) error {
		if err := db.AutoMigrate(&model.Student{}); err != nil {
			return fmt.Errorf("auto-migrate students: %w", err)
		}
		return nil
	})
}

// With opens a connection, runs fn on it and closes it before returning.
func (p *Provider) With(ctx context.Context, fn func(db *gorm.DB) error) (err error) {
	db, err := gorm.Open(p.dialector(), &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get connection handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close connection: %w", cerr)
		}
	}()

	return fn(db.WithContext(ctx))
}
