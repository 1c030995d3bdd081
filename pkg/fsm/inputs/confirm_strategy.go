package inputs

import (
	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/state"
)

type confirmStrategy struct{}

// NewConfirmStrategy rejects any text while the draft waits for the confirm button.
func NewConfirmStrategy() InputStrategy {
	return &confirmStrategy{}
}

func (c *confirmStrategy) Name() string {
	return "confirm"
}

func (c *confirmStrategy) Stage() state.Stage {
	return state.StageAwaitingConfirm
}

func (c *confirmStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	return AnswerResult{}, domain.NewValidationError(FieldConfirm, domain.ReasonAwaitConfirm, input.Text)
}
