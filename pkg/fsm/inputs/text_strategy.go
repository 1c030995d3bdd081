package inputs

import (
	"strings"
	"unicode/utf8"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/state"
)

type textStrategy struct {
	stage  state.Stage
	field  string
	minLen int
	maxLen int
	assign func(d *state.Draft, value string)
}

// NewTextStrategy returns a strategy storing trimmed text into one draft field.
// minLen and maxLen count runes; zero disables the bound.
func NewTextStrategy(stage state.Stage, field string, minLen, maxLen int, assign func(d *state.Draft, value string)) InputStrategy {
	return &textStrategy{stage: stage, field: field, minLen: minLen, maxLen: maxLen, assign: assign}
}

func (t *textStrategy) Name() string {
	return "text:" + t.field
}

func (t *textStrategy) Stage() state.Stage {
	return t.stage
}

func (t *textStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	value := strings.TrimSpace(input.Text)
	if value == "" {
		return AnswerResult{}, domain.NewValidationError(t.field, domain.ReasonEmpty, input.Text)
	}

	n := utf8.RuneCountInString(value)
	if (t.minLen > 0 && n < t.minLen) || (t.maxLen > 0 && n > t.maxLen) {
		return AnswerResult{}, domain.NewValidationError(t.field, domain.ReasonLength, value)
	}

	draft, err := ctx.ensureDraft()
	if err != nil {
		return AnswerResult{}, err
	}
	t.assign(draft, value)
	return AnswerResult{Advance: true}, nil
}
