package auth

import (
	"context"
	"fmt"
	"log"

	"telegramdebtlog/pkg/domain"
)

// AdminStore is the slice of the record store the admin roster needs.
type AdminStore interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AddAdmin(ctx context.Context, userID int64) (bool, error)
	RemoveAdmin(ctx context.Context, userID int64) error
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
	EnsureSeedAdmin(ctx context.Context, seedUserID int64) (bool, error)
}

// Service decides admin status and manages the roster. IsAdmin always reads the
// store, so roster changes apply to the very next decision.
type Service struct {
	store AdminStore
}

func NewService(store AdminStore) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("auth: store is nil")
	}
	return &Service{store: store}, nil
}

func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.store.IsAdmin(ctx, userID)
}

// AddAdmin returns false without error when userID is already an admin.
func (s *Service) AddAdmin(ctx context.Context, userID int64) (bool, error) {
	added, err := s.store.AddAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if added {
		log.Printf("[auth.AddAdmin] user %d promoted to admin", userID)
	}
	return added, nil
}

// RemoveAdmin returns domain.ErrNotFound when userID is not an admin.
func (s *Service) RemoveAdmin(ctx context.Context, userID int64) error {
	if err := s.store.RemoveAdmin(ctx, userID); err != nil {
		return err
	}
	log.Printf("[auth.RemoveAdmin] user %d removed from admins", userID)
	return nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.store.ListAdmins(ctx)
}

// Bootstrap inserts the seed admin when the roster is empty.
func (s *Service) Bootstrap(ctx context.Context, seedUserID int64) error {
	if seedUserID == 0 {
		return fmt.Errorf("auth: seed admin id is not configured")
	}
	seeded, err := s.store.EnsureSeedAdmin(ctx, seedUserID)
	if err != nil {
		return err
	}
	if seeded {
		log.Printf("[auth.Bootstrap] admin roster was empty, seeded user %d", seedUserID)
	}
	return nil
}
