package state

import "github.com/looplab/fsm"

type FSMCreator interface {
	NewConversationFSM(kind Kind) *fsm.FSM
}
