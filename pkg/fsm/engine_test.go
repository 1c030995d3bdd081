package fsm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/state"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(state.NewStore(NewFSMCreator()),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC))
}

func stepAll(t *testing.T, e *Engine, userID int64, lines ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, line := range lines {
		var err error
		out, err = e.Step(context.Background(), userID, line)
		if err != nil {
			t.Fatalf("step %q: %v", line, err)
		}
	}
	return out
}

func TestRecordDialogueReachesConfirm(t *testing.T) {
	e := newTestEngine()
	stage, err := e.Begin(1, state.KindRecord)
	if err != nil || stage != state.StageWaitingFullName {
		t.Fatalf("unexpected begin: %s %v", stage, err)
	}

	expected := []state.Stage{
		state.StageWaitingGroup,
		state.StageWaitingSubject,
		state.StageWaitingTask,
		state.StageWaitingDate,
		state.StageAwaitingConfirm,
	}
	inputs := []string{"Ivanov Ivan Ivanovich", "CS-101", "Algorithms", "HW3", "31.12.2030 23:59"}
	var out Outcome
	for i, line := range inputs {
		out, err = e.Step(context.Background(), 1, line)
		if err != nil {
			t.Fatalf("step %q: %v", line, err)
		}
		if out.Stage != expected[i] {
			t.Fatalf("after %q expected %s, got %s", line, expected[i], out.Stage)
		}
	}

	if !out.Completed {
		t.Fatalf("expected completed outcome")
	}
	want := state.Draft{
		FullName:        "Ivanov Ivan Ivanovich",
		Group:           "CS-101",
		Subject:         "Algorithms",
		TaskDescription: "HW3",
		DueDate:         time.Date(2030, 12, 31, 23, 59, 0, 0, time.UTC),
	}
	if out.Draft != want {
		t.Fatalf("unexpected draft:\n got %+v\nwant %+v", out.Draft, want)
	}

	draft, err := e.CompletedDraft(1)
	if err != nil || draft != want {
		t.Fatalf("unexpected completed draft: %+v %v", draft, err)
	}
}

func TestFullNameLengthRepromptsSameStage(t *testing.T) {
	e := newTestEngine()
	_, _ = e.Begin(1, state.KindRecord)

	out, err := e.Step(context.Background(), 1, "Ivan")
	ve, ok := domain.AsValidation(err)
	if !ok || ve.Reason != domain.ReasonLength {
		t.Fatalf("expected length validation error, got %v", err)
	}
	if out.Stage != state.StageWaitingFullName || out.Cleared {
		t.Fatalf("expected to stay in waiting_fullname, got %+v", out)
	}
	if e.Stage(1) != state.StageWaitingFullName {
		t.Fatalf("stage changed after rejected input: %s", e.Stage(1))
	}
}

func TestDateValidationKeepsWaitingDate(t *testing.T) {
	cases := []struct {
		input  string
		reason string
	}{
		{input: "2030-12-31 23:59", reason: domain.ReasonDateFormat},
		{input: "01.01.2000 00:00", reason: domain.ReasonDateNotFuture},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			e := newTestEngine()
			_, _ = e.Begin(1, state.KindRecord)
			stepAll(t, e, 1, "Ivanov Ivan Ivanovich", "CS-101", "Algorithms", "HW3")

			out, err := e.Step(context.Background(), 1, tc.input)
			ve, ok := domain.AsValidation(err)
			if !ok || ve.Reason != tc.reason {
				t.Fatalf("expected %s, got %v", tc.reason, err)
			}
			if out.Stage != state.StageWaitingDate || e.Stage(1) != state.StageWaitingDate {
				t.Fatalf("expected to remain in waiting_date, got %s", e.Stage(1))
			}

			out = stepAll(t, e, 1, "31.12.2030 23:59")
			if !out.Completed || out.Draft.FullName != "Ivanov Ivan Ivanovich" {
				t.Fatalf("draft lost earlier fields after re-prompt: %+v", out.Draft)
			}
		})
	}
}

func TestTextWhileAwaitingConfirmIsRejected(t *testing.T) {
	e := newTestEngine()
	_, _ = e.Begin(1, state.KindRecord)
	stepAll(t, e, 1, "Ivanov Ivan Ivanovich", "CS-101", "Algorithms", "HW3", "31.12.2030 23:59")

	_, err := e.Step(context.Background(), 1, "ok")
	ve, ok := domain.AsValidation(err)
	if !ok || ve.Reason != domain.ReasonAwaitConfirm {
		t.Fatalf("expected await_confirm error, got %v", err)
	}
	if e.Stage(1) != state.StageAwaitingConfirm {
		t.Fatalf("expected to remain awaiting confirm, got %s", e.Stage(1))
	}
}

func TestAdminDialoguesAreOneShot(t *testing.T) {
	e := newTestEngine()

	_, _ = e.Begin(2, state.KindAddAdmin)
	out, err := e.Step(context.Background(), 2, "12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AdminUserID != 12345 || !out.Cleared || out.Previous != state.StageAddingAdmin {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if e.HasState(2) {
		t.Fatalf("expected state cleared after admin step")
	}

	_, _ = e.Begin(2, state.KindRemoveAdmin)
	out, err = e.Step(context.Background(), 2, "not-a-number")
	ve, ok := domain.AsValidation(err)
	if !ok || ve.Reason != domain.ReasonNotNumeric {
		t.Fatalf("expected not_numeric, got %v", err)
	}
	if !out.Cleared || e.HasState(2) {
		t.Fatalf("expected state cleared even on parse failure")
	}
}

func TestStepWithoutStateIsDesync(t *testing.T) {
	e := newTestEngine()
	_, err := e.Step(context.Background(), 3, "hello")
	if !errors.Is(err, domain.ErrStateDesync) {
		t.Fatalf("expected ErrStateDesync, got %v", err)
	}
	if _, err := e.CompletedDraft(3); !errors.Is(err, domain.ErrStateDesync) {
		t.Fatalf("expected ErrStateDesync for confirm without draft, got %v", err)
	}
}

func TestCompletedDraftBeforeDateIsDesync(t *testing.T) {
	e := newTestEngine()
	_, _ = e.Begin(1, state.KindRecord)
	stepAll(t, e, 1, "Ivanov Ivan Ivanovich")
	if _, err := e.CompletedDraft(1); !errors.Is(err, domain.ErrStateDesync) {
		t.Fatalf("expected ErrStateDesync, got %v", err)
	}
}

func TestCancelAtAnyStageStartsFreshDraft(t *testing.T) {
	lines := []string{"Ivanov Ivan Ivanovich", "CS-101", "Algorithms", "HW3", "31.12.2030 23:59"}
	for n := 0; n <= len(lines); n++ {
		e := newTestEngine()
		_, _ = e.Begin(1, state.KindRecord)
		stepAll(t, e, 1, lines[:n]...)

		if !e.Cancel(1) {
			t.Fatalf("expected cancel to report an active dialogue after %d steps", n)
		}
		if e.HasState(1) {
			t.Fatalf("expected no state after cancel")
		}

		_, _ = e.Begin(1, state.KindRecord)
		out := stepAll(t, e, 1, "Petrov Petr", "G", "S", "T", "01.02.2031 10:00")
		if out.Draft.FullName != "Petrov Petr" || out.Draft.Group != "G" || out.Draft.TaskDescription != "T" {
			t.Fatalf("fields leaked from aborted attempt: %+v", out.Draft)
		}
	}
}

func TestReviseDateReturnsToWaitingDate(t *testing.T) {
	e := newTestEngine()
	_, _ = e.Begin(1, state.KindRecord)
	stepAll(t, e, 1, "Ivanov Ivan Ivanovich", "CS-101", "Algorithms", "HW3", "31.12.2030 23:59")

	if err := e.ReviseDate(context.Background(), 1); err != nil {
		t.Fatalf("revise: %v", err)
	}
	if e.Stage(1) != state.StageWaitingDate {
		t.Fatalf("expected waiting_date, got %s", e.Stage(1))
	}

	e2 := newTestEngine()
	_, _ = e2.Begin(1, state.KindRecord)
	if err := e2.ReviseDate(context.Background(), 1); !errors.Is(err, domain.ErrStateDesync) {
		t.Fatalf("expected ErrStateDesync from waiting_fullname, got %v", err)
	}
}

func TestConcurrentStepsAndCancelDoNotRace(t *testing.T) {
	e := newTestEngine()
	var wg sync.WaitGroup
	for userID := int64(1); userID <= 20; userID++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			unlock := e.Lock(id)
			defer unlock()
			_, _ = e.Begin(id, state.KindRecord)
			for _, line := range []string{"Ivanov Ivan Ivanovich", "CS-101", "Algorithms"} {
				_, _ = e.Step(context.Background(), id, line)
			}
		}(userID)
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			e.Cancel(id)
		}(userID)
	}
	wg.Wait()

	for userID := int64(1); userID <= 20; userID++ {
		stage := e.Stage(userID)
		if stage != state.StageNone && stage != state.StageWaitingTask {
			t.Fatalf("user %d left in unexpected stage %s", userID, stage)
		}
	}
}

func TestActiveDialoguesCountsSlots(t *testing.T) {
	e := newTestEngine()
	_, _ = e.Begin(1, state.KindRecord)
	_, _ = e.Begin(2, state.KindAddAdmin)
	if n := e.ActiveDialogues(); n != 2 {
		t.Fatalf("expected 2 active dialogues, got %d", n)
	}
	_, _ = e.Step(context.Background(), 2, "10")
	e.Cancel(1)
	if n := e.ActiveDialogues(); n != 0 {
		t.Fatalf("expected no active dialogues, got %d", n)
	}
}
