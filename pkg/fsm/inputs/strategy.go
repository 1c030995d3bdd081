package inputs

import (
	"fmt"
	"time"

	"telegramdebtlog/pkg/state"
)

// DueDateLayout is the only accepted due date format (dd.mm.yyyy hh:mm).
const DueDateLayout = "02.01.2006 15:04"

const (
	FullNameMinLen = 5
	FullNameMaxLen = 100
)

// Field names reported in validation errors.
const (
	FieldFullName = "full_name"
	FieldGroup    = "group"
	FieldSubject  = "subject"
	FieldTask     = "task"
	FieldDueDate  = "due_date"
	FieldUserID   = "user_id"
	FieldConfirm  = "confirm"
)

// InputStrategy parses the text a user sends while sitting in one stage.
type InputStrategy interface {
	Name() string
	Stage() state.Stage
	HandleAnswer(AnswerContext, AnswerInput) (AnswerResult, error)
}

// AnswerContext carries what a strategy may read or fill in.
type AnswerContext struct {
	UserID   int64
	Stage    state.Stage
	Draft    *state.Draft
	Now      time.Time
	Location *time.Location
}

// AnswerInput wraps the raw user text.
type AnswerInput struct {
	Text string
}

// AnswerResult tells the engine how to proceed. Validation failures are
// returned as *domain.ValidationError instead.
type AnswerResult struct {
	Advance bool
	UserID  int64
}

func (ctx AnswerContext) ensureDraft() (*state.Draft, error) {
	if ctx.Draft == nil {
		return nil, fmt.Errorf("draft is nil for stage %s", ctx.Stage)
	}
	return ctx.Draft, nil
}

func (ctx AnswerContext) location() *time.Location {
	if ctx.Location == nil {
		return time.Local
	}
	return ctx.Location
}
