package inputs

import (
	"strings"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/state"
)

type dueDateStrategy struct{}

// NewDueDateStrategy accepts DueDateLayout dates strictly after ctx.Now.
func NewDueDateStrategy() InputStrategy {
	return &dueDateStrategy{}
}

func (d *dueDateStrategy) Name() string {
	return "due_date"
}

func (d *dueDateStrategy) Stage() state.Stage {
	return state.StageWaitingDate
}

func (d *dueDateStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	value := strings.TrimSpace(input.Text)
	due, err := ParseDueDate(value, ctx.location())
	if err != nil {
		return AnswerResult{}, domain.NewValidationError(FieldDueDate, domain.ReasonDateFormat, value)
	}
	if !due.After(ctx.Now) {
		return AnswerResult{}, domain.NewValidationError(FieldDueDate, domain.ReasonDateNotFuture, value)
	}

	draft, err := ctx.ensureDraft()
	if err != nil {
		return AnswerResult{}, err
	}
	draft.DueDate = due
	return AnswerResult{Advance: true}, nil
}

// ParseDueDate parses value with DueDateLayout in loc.
func ParseDueDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DueDateLayout, value, loc)
}

// FormatDueDate renders t in DueDateLayout in loc.
func FormatDueDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DueDateLayout)
}
