// Package records owns the debt record lifecycle: confirming a finished draft,
// toggling completion, deletion and listings.
package records

import (
	"context"
	"fmt"
	"log"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/fsm/inputs"
	"telegramdebtlog/pkg/state"
)

// Repository is the record half of the store.
type Repository interface {
	CreateRecord(ctx context.Context, rec *domain.DebtRecord) error
	ToggleRecord(ctx context.Context, id uint) (domain.DebtRecord, error)
	DeleteRecord(ctx context.Context, id uint) error
	ListRecordsByUser(ctx context.Context, userID int64) ([]domain.DebtRecord, error)
	ListRecords(ctx context.Context) ([]domain.DebtRecord, error)
}

// Drafts is the part of the conversation engine the manager drives.
type Drafts interface {
	CompletedDraft(userID int64) (state.Draft, error)
	ReviseDate(ctx context.Context, userID int64) error
	Cancel(userID int64) bool
	Now() time.Time
}

type Manager struct {
	repo   Repository
	drafts Drafts
}

func NewManager(repo Repository, drafts Drafts) (*Manager, error) {
	if repo == nil {
		return nil, fmt.Errorf("records: repository is nil")
	}
	if drafts == nil {
		return nil, fmt.Errorf("records: drafts are nil")
	}
	return &Manager{repo: repo, drafts: drafts}, nil
}

// Confirm persists the user's completed draft and ends the dialogue.
//
// If the due date has passed while the draft waited, the dialogue goes back to
// the date stage and a ValidationError is returned. A failed insert leaves the
// draft in place so the user can press confirm again.
func (m *Manager) Confirm(ctx context.Context, userID int64) (domain.DebtRecord, error) {
	draft, err := m.drafts.CompletedDraft(userID)
	if err != nil {
		return domain.DebtRecord{}, err
	}

	now := m.drafts.Now()
	if !draft.DueDate.After(now) {
		if err := m.drafts.ReviseDate(ctx, userID); err != nil {
			return domain.DebtRecord{}, err
		}
		return domain.DebtRecord{}, domain.NewValidationError(inputs.FieldDueDate, domain.ReasonDateNotFuture,
			draft.DueDate.Format(inputs.DueDateLayout))
	}

	rec := domain.DebtRecord{
		UserID:          userID,
		FullName:        draft.FullName,
		Group:           draft.Group,
		Subject:         draft.Subject,
		TaskDescription: draft.TaskDescription,
		DueDate:         draft.DueDate,
		CreatedAt:       now,
	}
	if err := m.repo.CreateRecord(ctx, &rec); err != nil {
		log.Printf("[records.Confirm] insert failed for user %d, draft kept: %v", userID, err)
		return domain.DebtRecord{}, err
	}
	m.drafts.Cancel(userID)
	log.Printf("[records.Confirm] record %d saved for user %d", rec.ID, userID)
	return rec, nil
}

// Toggle flips the completion flag of record id and returns the updated record.
func (m *Manager) Toggle(ctx context.Context, id uint) (domain.DebtRecord, error) {
	rec, err := m.repo.ToggleRecord(ctx, id)
	if err != nil {
		return domain.DebtRecord{}, err
	}
	log.Printf("[records.Toggle] record %d completed=%t", rec.ID, rec.IsCompleted)
	return rec, nil
}

// Delete removes record id; domain.ErrNotFound when it does not exist.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	if err := m.repo.DeleteRecord(ctx, id); err != nil {
		return err
	}
	log.Printf("[records.Delete] record %d deleted", id)
	return nil
}

func (m *Manager) ListForUser(ctx context.Context, userID int64) ([]domain.DebtRecord, error) {
	return m.repo.ListRecordsByUser(ctx, userID)
}

func (m *Manager) ListAll(ctx context.Context) ([]domain.DebtRecord, error) {
	return m.repo.ListRecords(ctx)
}
