package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"telegramdebtlog/pkg/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "debts.db")
	s, err := Open(context.Background(), DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRecord(userID int64, due time.Time) *domain.DebtRecord {
	return &domain.DebtRecord{
		UserID:          userID,
		FullName:        "Ivanov Ivan Ivanovich",
		Group:           "CS-101",
		Subject:         "Algorithms",
		TaskDescription: "HW3",
		DueDate:         due,
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestCreateRecordAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	due := time.Date(2030, 12, 31, 23, 59, 0, 0, time.UTC)

	first := newRecord(1, due)
	second := newRecord(1, due)
	if err := s.CreateRecord(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := s.CreateRecord(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d and %d", first.ID, second.ID)
	}

	got, err := s.GetRecord(ctx, first.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.IsCompleted {
		t.Fatalf("expected new record to be incomplete")
	}
	if !got.DueDate.Equal(due) || got.Group != "CS-101" || got.TaskDescription != "HW3" {
		t.Fatalf("unexpected stored record: %+v", got)
	}
}

func TestToggleRecordIsItsOwnInverse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := newRecord(7, time.Now().Add(48*time.Hour))
	if err := s.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	once, err := s.ToggleRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !once.IsCompleted {
		t.Fatalf("expected completed after first toggle")
	}
	twice, err := s.ToggleRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if twice.IsCompleted {
		t.Fatalf("expected incomplete after second toggle")
	}
}

func TestToggleMissingRecordReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ToggleRecord(context.Background(), 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecordTwiceReportsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := newRecord(7, time.Now().Add(time.Hour))
	if err := s.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteRecord(ctx, rec.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteRecord(ctx, rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListRecordsOrderedByDueDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(24 * time.Hour)
	for _, r := range []*domain.DebtRecord{
		newRecord(1, base.Add(3*time.Hour)),
		newRecord(2, base.Add(1*time.Hour)),
		newRecord(1, base.Add(2*time.Hour)),
	} {
		if err := s.CreateRecord(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.ListRecords(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].DueDate.Before(all[i-1].DueDate) {
			t.Fatalf("records not ordered by due date: %+v", all)
		}
	}

	mine, err := s.ListRecordsByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 || mine[0].UserID != 1 || mine[0].DueDate.After(mine[1].DueDate) {
		t.Fatalf("unexpected user records: %+v", mine)
	}

	total, completed, err := s.CountRecords(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 || completed != 0 {
		t.Fatalf("expected 3/0, got %d/%d", total, completed)
	}
}

func TestAddAdminConcurrentCreatesSingleRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.AddAdmin(ctx, 555)
			if err != nil {
				errs <- err
				return
			}
			results <- created
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("add admin: %v", err)
	}
	createdCount := 0
	for created := range results {
		if created {
			createdCount++
		}
	}
	if createdCount != 1 {
		t.Fatalf("expected exactly one insert, got %d", createdCount)
	}
	admins, err := s.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 1 || admins[0].UserID != 555 {
		t.Fatalf("expected single admin row, got %+v", admins)
	}
}

func TestRemoveAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.AddAdmin(ctx, 10); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.RemoveAdmin(ctx, 10); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err := s.IsAdmin(ctx, 10)
	if err != nil || ok {
		t.Fatalf("expected removed admin, got ok=%v err=%v", ok, err)
	}
	if err := s.RemoveAdmin(ctx, 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureSeedAdminOnlyWhenEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.EnsureSeedAdmin(ctx, 1)
	if err != nil || !seeded {
		t.Fatalf("expected seed on empty table, got seeded=%v err=%v", seeded, err)
	}
	seeded, err = s.EnsureSeedAdmin(ctx, 2)
	if err != nil || seeded {
		t.Fatalf("expected no seed when admins exist, got seeded=%v err=%v", seeded, err)
	}
	count, err := s.CountAdmins(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 admin, got %d (%v)", count, err)
	}
}
