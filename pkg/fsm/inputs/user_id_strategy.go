package inputs

import (
	"strconv"
	"strings"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/state"
)

type userIDStrategy struct {
	stage state.Stage
}

// NewUserIDStrategy parses a numeric Telegram user ID for an admin dialogue stage.
func NewUserIDStrategy(stage state.Stage) InputStrategy {
	return &userIDStrategy{stage: stage}
}

func (u *userIDStrategy) Name() string {
	return "user_id:" + string(u.stage)
}

func (u *userIDStrategy) Stage() state.Stage {
	return u.stage
}

func (u *userIDStrategy) HandleAnswer(ctx AnswerContext, input AnswerInput) (AnswerResult, error) {
	value := strings.TrimSpace(input.Text)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return AnswerResult{}, domain.NewValidationError(FieldUserID, domain.ReasonNotNumeric, value)
	}
	return AnswerResult{Advance: true, UserID: id}, nil
}
