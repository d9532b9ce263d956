package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/entities"
)

// Connection options appended to every DSN. sqlite ignores foreign key
// clauses unless the pragma is set per connection.
var dsnOptions = []string{
	"_foreign_keys=on",
	"_busy_timeout=5000",
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the catalog database at dbPath and migrates the schema.
// The caller owns the handle and must Close it on shutdown.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Genre{},
		&entities.Author{},
		&entities.Book{},
		&entities.BookInstance{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Database initialized")

	return &Database{DB: db}, nil
}

func dsn(dbPath string) string {
	for _, opt := range dsnOptions {
		name := opt[:strings.Index(opt, "=")+1]
		if strings.Contains(dbPath, name) {
			continue
		}
		if strings.Contains(dbPath, "?") {
			dbPath += "&" + opt
		} else {
			dbPath += "?" + opt
		}
	}
	return dbPath
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is still usable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Counts is a snapshot of how many records of each kind the catalog holds.
type Counts struct {
	Genres        int64
	Authors       int64
	Books         int64
	BookInstances int64
}

// Counts reads every table count inside one read transaction, so the numbers
// agree with each other.
func (d *Database) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for model, dest := range map[any]*int64{
			&entities.Genre{}:        &counts.Genres,
			&entities.Author{}:       &counts.Authors,
			&entities.Book{}:         &counts.Books,
			&entities.BookInstance{}: &counts.BookInstances,
		} {
			if err := tx.Model(model).Count(dest).Error; err != nil {
				return fmt.Errorf("count %T: %w", model, err)
			}
		}
		return nil
	})
	return counts, err
}

// Reset removes every catalog record, children first.
func (d *Database) Reset() error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&entities.BookInstance{},
			&entities.Book{},
			&entities.Author{},
			&entities.Genre{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to reset %T: %w", model, err)
			}
		}
		return nil
	})
}
