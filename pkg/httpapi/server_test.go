package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/storage"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), storage.DriverSQLite, filepath.Join(t.TempDir(), "debts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, NewRouter(newStore(t), nil), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

type downSource struct{}

func (downSource) Ping(context.Context) error { return errors.New("connection refused") }

func (downSource) CountRecords(context.Context) (int64, int64, error) {
	return 0, 0, errors.New("connection refused")
}

func (downSource) CountAdmins(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestHealthzReportsUnavailable(t *testing.T) {
	router := NewRouter(downSource{}, nil)
	if w := get(t, router, "/healthz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w := get(t, router, "/stats"); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

type fixedDialogues int

func (f fixedDialogues) ActiveDialogues() int { return int(f) }

func TestStatsCountsRecordsAndAdmins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rec := &domain.DebtRecord{
			UserID:          int64(i + 1),
			FullName:        "Ivanov Ivan Ivanovich",
			Group:           "CS-101",
			Subject:         "Algorithms",
			TaskDescription: "HW3",
			DueDate:         time.Now().Add(time.Duration(i+1) * time.Hour),
		}
		if err := s.CreateRecord(ctx, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
		if i == 0 {
			if _, err := s.ToggleRecord(ctx, rec.ID); err != nil {
				t.Fatalf("toggle: %v", err)
			}
		}
	}
	if _, err := s.AddAdmin(ctx, 1); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	w := get(t, NewRouter(s, fixedDialogues(2)), "/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Records struct {
			Total     int64 `json:"total"`
			Completed int64 `json:"completed"`
			Pending   int64 `json:"pending"`
		} `json:"records"`
		Admins          int64 `json:"admins"`
		ActiveDialogues int   `json:"active_dialogues"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Records.Total != 3 || body.Records.Completed != 1 || body.Records.Pending != 2 || body.Admins != 1 || body.ActiveDialogues != 2 {
		t.Fatalf("unexpected stats: %+v", body)
	}
}
