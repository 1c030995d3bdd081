package fsm

import (
	"context"
	"testing"

	"telegramdebtlog/pkg/state"
)

func TestSubmitWalksRecordStages(t *testing.T) {
	m := NewConversationFSM(state.StageWaitingFullName)
	want := []state.Stage{
		state.StageWaitingGroup,
		state.StageWaitingSubject,
		state.StageWaitingTask,
		state.StageWaitingDate,
		state.StageAwaitingConfirm,
	}
	for _, stage := range want {
		if err := m.Event(context.Background(), EventSubmit); err != nil {
			t.Fatalf("submit towards %s: %v", stage, err)
		}
		if state.Stage(m.Current()) != stage {
			t.Fatalf("expected %s, got %s", stage, m.Current())
		}
	}
	if err := m.Event(context.Background(), EventSubmit); err == nil {
		t.Fatalf("awaiting_confirm must not accept submit")
	}
}

func TestReviseDateOnlyFromAwaitingConfirm(t *testing.T) {
	m := NewConversationFSM(state.StageWaitingTask)
	err := m.Event(context.Background(), EventReviseDate)
	if !isInvalidEventError(err) {
		t.Fatalf("expected invalid event from waiting_task, got %v", err)
	}

	m = NewConversationFSM(state.StageAwaitingConfirm)
	if err := m.Event(context.Background(), EventReviseDate); err != nil {
		t.Fatalf("revise: %v", err)
	}
	if state.Stage(m.Current()) != state.StageWaitingDate {
		t.Fatalf("expected waiting_date, got %s", m.Current())
	}
}

func TestAdminStagesSubmitToNone(t *testing.T) {
	for _, stage := range []state.Stage{state.StageAddingAdmin, state.StageRemovingAdmin} {
		m := NewConversationFSM(stage)
		if err := m.Event(context.Background(), EventSubmit); err != nil {
			t.Fatalf("%s submit: %v", stage, err)
		}
		if state.Stage(m.Current()) != state.StageNone {
			t.Fatalf("%s: expected none, got %s", stage, m.Current())
		}
	}
}

func TestCreatorStartsAtKindFirstStage(t *testing.T) {
	c := NewFSMCreator()
	cases := map[state.Kind]state.Stage{
		state.KindRecord:      state.StageWaitingFullName,
		state.KindAddAdmin:    state.StageAddingAdmin,
		state.KindRemoveAdmin: state.StageRemovingAdmin,
	}
	for kind, stage := range cases {
		if got := state.Stage(c.NewConversationFSM(kind).Current()); got != stage {
			t.Fatalf("%s: expected %s, got %s", kind, stage, got)
		}
	}
}
