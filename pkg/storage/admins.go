package storage

import (
	"context"
	"fmt"
	"time"

	"telegramdebtlog/pkg/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsAdmin reports whether userID is in the admin table.
func (s *Store) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Admin{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("storage: check admin %d: %w", userID, err)
	}
	return count > 0, nil
}

// AddAdmin inserts userID unless it is already present. The unique index decides,
// so concurrent calls for the same user create exactly one row.
func (s *Store) AddAdmin(ctx context.Context, userID int64) (bool, error) {
	return addAdmin(s.db.WithContext(ctx), userID)
}

func addAdmin(db *gorm.DB, userID int64) (bool, error) {
	admin := domain.Admin{UserID: userID, CreatedAt: time.Now().UTC()}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&admin)
	if res.Error != nil {
		return false, fmt.Errorf("storage: add admin %d: %w", userID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RemoveAdmin deletes the admin row for userID.
func (s *Store) RemoveAdmin(ctx context.Context, userID int64) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Admin{})
	if res.Error != nil {
		return fmt.Errorf("storage: remove admin %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("storage: admin %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// ListAdmins returns the roster in insertion order.
func (s *Store) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	var out []domain.Admin
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("storage: list admins: %w", err)
	}
	return out, nil
}

// CountAdmins returns the number of admins.
func (s *Store) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Admin{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("storage: count admins: %w", err)
	}
	return count, nil
}

// EnsureSeedAdmin inserts seedUserID when the admin table is empty.
func (s *Store) EnsureSeedAdmin(ctx context.Context, seedUserID int64) (bool, error) {
	seeded := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		created, err := addAdmin(tx, seedUserID)
		if err != nil {
			return err
		}
		seeded = created
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("storage: ensure seed admin: %w", err)
	}
	return seeded, nil
}
