package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"telegramdebtlog/pkg/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store persists debt records and the admin roster.
type Store struct {
	db *gorm.DB
}

// Open connects to the database selected by driver and runs migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("storage: dsn cannot be empty")
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to access sql.DB: %w", err)
	}
	if dialector.Name() == DriverSQLite {
		// sqlite allows a single writer; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Printf("[storage.Open] %s database ready", dialector.Name())
	return s, nil
}

// Migrate creates or updates the debt_records and admins tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&domain.DebtRecord{}, &domain.Admin{}); err != nil {
		return fmt.Errorf("storage: migration failed: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateRecord inserts rec and fills in its store-assigned ID.
func (s *Store) CreateRecord(ctx context.Context, rec *domain.DebtRecord) error {
	if rec == nil {
		return fmt.Errorf("storage: record is nil")
	}
	rec.ID = 0
	rec.DueDate = rec.DueDate.UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("storage: create record: %w", err)
	}
	return nil
}

// GetRecord loads a record by ID.
func (s *Store) GetRecord(ctx context.Context, id uint) (domain.DebtRecord, error) {
	var rec domain.DebtRecord
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DebtRecord{}, fmt.Errorf("storage: record %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.DebtRecord{}, fmt.Errorf("storage: get record %d: %w", id, err)
	}
	return rec, nil
}

// ToggleRecord flips the completion flag in one transaction and returns the updated row.
func (s *Store) ToggleRecord(ctx context.Context, id uint) (domain.DebtRecord, error) {
	var rec domain.DebtRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.DebtRecord{}).
			Where("id = ?", id).
			Update("is_completed", gorm.Expr("NOT is_completed"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.First(&rec, id).Error
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DebtRecord{}, fmt.Errorf("storage: record %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.DebtRecord{}, fmt.Errorf("storage: toggle record %d: %w", id, err)
	}
	return rec, nil
}

// DeleteRecord removes a record permanently.
func (s *Store) DeleteRecord(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.DebtRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("storage: delete record %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("storage: record %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListRecordsByUser returns a user's records ordered by ascending due date.
func (s *Store) ListRecordsByUser(ctx context.Context, userID int64) ([]domain.DebtRecord, error) {
	var out []domain.DebtRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("due_date ASC").Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("storage: list records for user %d: %w", userID, err)
	}
	return out, nil
}

// ListRecords returns every record ordered by ascending due date.
func (s *Store) ListRecords(ctx context.Context) ([]domain.DebtRecord, error) {
	var out []domain.DebtRecord
	err := s.db.WithContext(ctx).
		Order("due_date ASC").Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("storage: list records: %w", err)
	}
	return out, nil
}

// CountRecords returns the total and completed record counts.
func (s *Store) CountRecords(ctx context.Context) (total int64, completed int64, err error) {
	db := s.db.WithContext(ctx).Model(&domain.DebtRecord{})
	if err = db.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("storage: count records: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&domain.DebtRecord{}).Where("is_completed = ?", true).Count(&completed).Error
	if err != nil {
		return 0, 0, fmt.Errorf("storage: count completed records: %w", err)
	}
	return total, completed, nil
}
