package database

import (
	"fmt"
	"time"

	"pasar/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the dialect and pool size.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Open connects to the configured database.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "mysql":
		dialector = mysql.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// One long-lived connection: an in-memory database disappears with its last connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return db, nil
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns/5 + 1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// OpenMemory opens a private in-memory SQLite database with the schema applied.
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := Open(Options{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
