// Package gormstore implements store.Store on a relational database through
// gorm. sqlite (pure Go, no cgo) is the default; postgres is available for
// deployments that already run one.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"water-delivery-api/models"
	"water-delivery-api/store"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects with the named driver. sqlite is limited to a single
// connection so writers serialize instead of failing with SQLITE_BUSY.
func Open(driver, dsn string, logLevel logger.LogLevel) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", driver, err)
	}

	if driver == DriverSQLite || driver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gormstore: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// counter backs sequential identifiers such as user_id.
type counter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

func (counter) TableName() string { return "counters" }

func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.ChangeLogEntry{},
		&counter{},
	)
	if err != nil {
		return fmt.Errorf("gormstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// nextSequence increments and returns the named counter inside tx.
func nextSequence(tx *gorm.DB, name string) (int64, error) {
	res := tx.Model(&counter{}).Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		c := counter{Name: name, Value: 1}
		if err := tx.Create(&c).Error; err != nil {
			return 0, err
		}
		return c.Value, nil
	}
	var c counter
	if err := tx.First(&c, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return c.Value, nil
}

// wrapError maps gorm/driver errors onto store sentinels.
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// DB exposes the underlying handle for maintenance tasks and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
