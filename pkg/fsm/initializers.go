package fsm

import (
	"telegramdebtlog/pkg/state"

	"github.com/looplab/fsm"
)

type fsmCreatorImpl struct{}

func (fc *fsmCreatorImpl) NewConversationFSM(kind state.Kind) *fsm.FSM {
	return NewConversationFSM(kind.FirstStage())
}

func NewFSMCreator() state.FSMCreator {
	return &fsmCreatorImpl{}
}
