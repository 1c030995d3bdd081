package fsm

import (
	"context"
	"log"

	"telegramdebtlog/pkg/state"

	"github.com/looplab/fsm"
)

// transitions is the complete stage table. Record creation is linear; the admin
// dialogues are one-shot and fall straight back to none. Cancelling drops the
// slot, so it needs no transition.
var transitions = fsm.Events{
	{Name: EventSubmit, Src: []string{string(state.StageWaitingFullName)}, Dst: string(state.StageWaitingGroup)},
	{Name: EventSubmit, Src: []string{string(state.StageWaitingGroup)}, Dst: string(state.StageWaitingSubject)},
	{Name: EventSubmit, Src: []string{string(state.StageWaitingSubject)}, Dst: string(state.StageWaitingTask)},
	{Name: EventSubmit, Src: []string{string(state.StageWaitingTask)}, Dst: string(state.StageWaitingDate)},
	{Name: EventSubmit, Src: []string{string(state.StageWaitingDate)}, Dst: string(state.StageAwaitingConfirm)},
	{Name: EventSubmit, Src: []string{string(state.StageAddingAdmin), string(state.StageRemovingAdmin)}, Dst: string(state.StageNone)},

	{Name: EventReviseDate, Src: []string{string(state.StageAwaitingConfirm)}, Dst: string(state.StageWaitingDate)},
}

func NewConversationFSM(initial state.Stage) *fsm.FSM {
	callbacks := fsm.Callbacks{
		"enter_state": logTransition,
	}
	return fsm.NewFSM(string(initial), transitions, callbacks)
}

func logTransition(_ context.Context, e *fsm.Event) {
	log.Printf("[conversation] %s: %s -> %s", e.Event, e.Src, e.Dst)
}
