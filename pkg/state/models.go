package state

import (
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// Stage is the position of a user inside a dialogue. The set is closed.
type Stage string

const (
	StageNone            Stage = "none"
	StageWaitingFullName Stage = "waiting_fullname"
	StageWaitingGroup    Stage = "waiting_group"
	StageWaitingSubject  Stage = "waiting_subject"
	StageWaitingTask     Stage = "waiting_task"
	StageWaitingDate     Stage = "waiting_date"
	StageAwaitingConfirm Stage = "awaiting_confirm"
	StageAddingAdmin     Stage = "adding_admin"
	StageRemovingAdmin   Stage = "removing_admin"
)

// Stages lists every stage in transition order.
var Stages = []Stage{
	StageNone,
	StageWaitingFullName,
	StageWaitingGroup,
	StageWaitingSubject,
	StageWaitingTask,
	StageWaitingDate,
	StageAwaitingConfirm,
	StageAddingAdmin,
	StageRemovingAdmin,
}

func (s Stage) String() string { return string(s) }

// IsAdminStage reports whether s belongs to the one-shot admin dialogues.
func (s Stage) IsAdminStage() bool {
	return s == StageAddingAdmin || s == StageRemovingAdmin
}

// Kind selects which dialogue Begin starts.
type Kind int

const (
	KindRecord Kind = iota + 1
	KindAddAdmin
	KindRemoveAdmin
)

// FirstStage is the stage a freshly started dialogue of this kind sits in.
func (k Kind) FirstStage() Stage {
	switch k {
	case KindRecord:
		return StageWaitingFullName
	case KindAddAdmin:
		return StageAddingAdmin
	case KindRemoveAdmin:
		return StageRemovingAdmin
	default:
		return StageNone
	}
}

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindAddAdmin:
		return "add_admin"
	case KindRemoveAdmin:
		return "remove_admin"
	default:
		return "unknown"
	}
}

// Draft is a debt record being assembled field by field. It has no identity yet.
type Draft struct {
	FullName        string
	Group           string
	Subject         string
	TaskDescription string
	DueDate         time.Time
}

// Conversation is the single dialogue slot of one user.
type Conversation struct {
	UserID    int64
	Kind      Kind
	FSM       *fsm.FSM
	Draft     *Draft
	StartedAt time.Time
}

func (c *Conversation) Stage() Stage {
	if c == nil || c.FSM == nil {
		return StageNone
	}
	return Stage(c.FSM.Current())
}

// UserState carries the per-user event lock. Handlers hold Mu for a whole update.
type UserState struct {
	UserID int64
	Mu     sync.Mutex
}

func NewDraft() *Draft {
	return &Draft{}
}
