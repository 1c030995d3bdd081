package fsm

import (
	"context"
	"fmt"
	"log"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/fsm/inputs"
	"telegramdebtlog/pkg/state"
)

// Outcome describes what a single Step did.
type Outcome struct {
	// Stage is the stage after the step; StageNone once the slot is gone.
	Stage state.Stage
	// Previous is the stage the input was consumed in.
	Previous state.Stage
	// Completed is set when a record draft reached awaiting_confirm.
	Completed bool
	Draft     state.Draft
	// AdminUserID is the parsed ID from an admin dialogue.
	AdminUserID int64
	// Cleared reports that the slot was removed by this step.
	Cleared bool
}

// Engine drives per-user dialogues over a state.Store.
type Engine struct {
	store *state.Store
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Engine)

// WithClock overrides the time source used for due date checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone due dates are parsed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewEngine(store *state.Store, opts ...Option) *Engine {
	inputs.RegisterBuiltins()
	e := &Engine{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) Now() time.Time { return e.now() }

// Lock serializes events of one user. The returned func releases the lock.
func (e *Engine) Lock(userID int64) func() {
	userState := e.store.GetOrCreateUserState(userID)
	userState.Mu.Lock()
	return userState.Mu.Unlock
}

// Begin starts a dialogue of kind for userID, discarding any previous one.
func (e *Engine) Begin(userID int64, kind state.Kind) (state.Stage, error) {
	stage, err := e.store.Begin(userID, kind)
	if err != nil {
		return state.StageNone, err
	}
	log.Printf("[Engine.Begin] User %d started %s dialogue at %s", userID, kind, stage)
	return stage, nil
}

func (e *Engine) HasState(userID int64) bool {
	return e.store.Has(userID)
}

func (e *Engine) Stage(userID int64) state.Stage {
	return e.store.Stage(userID)
}

// ActiveDialogues returns how many users are in the middle of a dialogue.
func (e *Engine) ActiveDialogues() int {
	return e.store.Len()
}

// Cancel clears the user's dialogue unconditionally and reports whether one existed.
func (e *Engine) Cancel(userID int64) bool {
	cleared := e.store.Clear(userID)
	if cleared {
		log.Printf("[Engine.Cancel] User %d dialogue cleared", userID)
	}
	return cleared
}

// Step consumes one line of input in the user's current stage.
//
// A *domain.ValidationError leaves record stages untouched so the user can be
// re-prompted; admin stages are one-shot and are cleared even on bad input.
// domain.ErrStateDesync is returned when no dialogue is active.
func (e *Engine) Step(ctx context.Context, userID int64, input string) (Outcome, error) {
	var out Outcome
	err := e.store.Update(userID, func(c *state.Conversation) (bool, error) {
		stage := c.Stage()
		out.Previous = stage
		out.Stage = stage

		strategy := inputs.Get(stage)
		if strategy == nil {
			out.Stage = state.StageNone
			out.Cleared = true
			return false, fmt.Errorf("no input strategy for stage %s: %w", stage, domain.ErrStateDesync)
		}

		answerCtx := inputs.AnswerContext{
			UserID:   userID,
			Stage:    stage,
			Draft:    c.Draft,
			Now:      e.now(),
			Location: e.loc,
		}
		result, err := strategy.HandleAnswer(answerCtx, inputs.AnswerInput{Text: input})
		if err != nil {
			if _, ok := domain.AsValidation(err); !ok {
				out.Stage = state.StageNone
				out.Cleared = true
				return false, fmt.Errorf("stage %s: %v: %w", stage, err, domain.ErrStateDesync)
			}
			if stage.IsAdminStage() {
				out.Stage = state.StageNone
				out.Cleared = true
				return false, err
			}
			return true, err
		}
		if !result.Advance {
			return true, nil
		}

		if err := c.FSM.Event(ctx, EventSubmit); err != nil && !isNoTransitionError(err) {
			out.Stage = state.StageNone
			out.Cleared = true
			return false, fmt.Errorf("submit in stage %s: %v: %w", stage, err, domain.ErrStateDesync)
		}
		out.Stage = c.Stage()

		if stage.IsAdminStage() {
			out.AdminUserID = result.UserID
			out.Cleared = true
			return false, nil
		}
		if out.Stage == state.StageAwaitingConfirm && c.Draft != nil {
			out.Completed = true
			out.Draft = *c.Draft
		}
		return true, nil
	})
	return out, err
}

// CompletedDraft returns a copy of the draft waiting for confirmation.
func (e *Engine) CompletedDraft(userID int64) (state.Draft, error) {
	var draft state.Draft
	err := e.store.Update(userID, func(c *state.Conversation) (bool, error) {
		if c.Stage() != state.StageAwaitingConfirm || c.Draft == nil {
			return true, fmt.Errorf("user %d is in stage %s, not awaiting confirmation: %w", userID, c.Stage(), domain.ErrStateDesync)
		}
		draft = *c.Draft
		return true, nil
	})
	return draft, err
}

// ReviseDate sends a completed draft back to the due date stage.
func (e *Engine) ReviseDate(ctx context.Context, userID int64) error {
	return e.store.Update(userID, func(c *state.Conversation) (bool, error) {
		err := c.FSM.Event(ctx, EventReviseDate)
		if err != nil && isInvalidEventError(err) {
			return true, fmt.Errorf("revise date from %s: %v: %w", c.Stage(), err, domain.ErrStateDesync)
		}
		if err != nil && !isNoTransitionError(err) {
			return true, err
		}
		if c.Draft != nil {
			c.Draft.DueDate = time.Time{}
		}
		return true, nil
	})
}
