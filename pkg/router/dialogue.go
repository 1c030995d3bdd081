package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/fsm"
	"telegramdebtlog/pkg/fsm/inputs"
	"telegramdebtlog/pkg/state"
)

// dueDateHint is how far ahead the example date in prompts is.
const dueDateHint = 72 * time.Hour

func (r *Router) startRecord(ctx context.Context, ev Event) {
	if _, err := r.engine.Begin(ev.UserID, state.KindRecord); err != nil {
		log.Printf("[startRecord] user %d: %v", ev.UserID, err)
		r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.InternalError)
		return
	}
	r.send(ctx, ev.ChatID, r.texts.Prompts.FullName, r.cancelKeyboard())
}

func (r *Router) beginAdminDialogue(ctx context.Context, ev Event, kind state.Kind, prompt string) {
	r.answer(ctx, ev, "")
	if _, err := r.engine.Begin(ev.UserID, kind); err != nil {
		log.Printf("[beginAdminDialogue] user %d: %v", ev.UserID, err)
		r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.InternalError)
		return
	}
	r.send(ctx, ev.ChatID, prompt, r.cancelKeyboard())
}

func (r *Router) continueDialogue(ctx context.Context, ev Event, text string) {
	out, err := r.engine.Step(ctx, ev.UserID, text)
	if err != nil {
		if ve, ok := domain.AsValidation(err); ok {
			r.rejectInput(ctx, ev, out, ve)
			return
		}
		if errors.Is(err, domain.ErrStateDesync) {
			r.desync(ctx, ev, err)
			return
		}
		log.Printf("[continueDialogue] user %d in %s: %v", ev.UserID, out.Previous, err)
		r.send(ctx, ev.ChatID, r.texts.Messages.InternalError, nil)
		return
	}

	switch {
	case out.Previous.IsAdminStage():
		r.finishAdminDialogue(ctx, ev, out)
	case out.Completed:
		r.askConfirmation(ctx, ev, out.Draft)
	default:
		r.send(ctx, ev.ChatID, r.promptFor(out.Stage), r.cancelKeyboard())
	}
}

func (r *Router) promptFor(stage state.Stage) string {
	p := r.texts.Prompts
	switch stage {
	case state.StageWaitingFullName:
		return p.FullName
	case state.StageWaitingGroup:
		return p.Group
	case state.StageWaitingSubject:
		return p.Subject
	case state.StageWaitingTask:
		return p.Task
	case state.StageWaitingDate:
		return fmt.Sprintf(p.DueDate, r.exampleDate(dueDateHint))
	case state.StageAwaitingConfirm:
		return p.Confirm
	default:
		return r.texts.Messages.UseMenu
	}
}

func (r *Router) exampleDate(ahead time.Duration) string {
	return inputs.FormatDueDate(r.engine.Now().Add(ahead), r.engine.Location())
}

// rejectInput explains why input was refused. Record stages keep the dialogue
// open; admin stages have already been closed by the engine.
func (r *Router) rejectInput(ctx context.Context, ev Event, out fsm.Outcome, ve *domain.ValidationError) {
	m := r.texts.Messages
	var text string
	switch ve.Reason {
	case domain.ReasonLength:
		text = m.NameLength
	case domain.ReasonEmpty:
		text = m.EmptyText
	case domain.ReasonDateFormat:
		text = fmt.Sprintf(m.DateFormat, r.exampleDate(0))
	case domain.ReasonDateNotFuture:
		text = m.DateNotFuture
	case domain.ReasonAwaitConfirm:
		text = m.AwaitConfirm
	case domain.ReasonNotNumeric:
		text = m.InvalidUserID
	default:
		text = m.InternalError
	}
	log.Printf("[rejectInput] user %d in %s: %v", ev.UserID, out.Previous, ve)

	if out.Cleared {
		r.sendMainMenu(ctx, ev.ChatID, ev.UserID, text)
		return
	}
	r.send(ctx, ev.ChatID, text, r.cancelKeyboard())
}

func (r *Router) askConfirmation(ctx context.Context, ev Event, draft state.Draft) {
	card, err := renderDraft(draft, r.engine.Location())
	if err != nil {
		log.Printf("[askConfirmation] render draft for user %d: %v", ev.UserID, err)
		r.desync(ctx, ev, err)
		return
	}
	r.send(ctx, ev.ChatID, r.texts.Prompts.Confirm+"\n\n"+card, r.confirmKeyboard())
}

// finishAdminDialogue applies a parsed admin user ID. The roster is only touched
// when the acting user is still an admin at this moment.
func (r *Router) finishAdminDialogue(ctx context.Context, ev Event, out fsm.Outcome) {
	isAdmin, err := r.auth.IsAdmin(ctx, ev.UserID)
	if err != nil || !isAdmin {
		log.Printf("[finishAdminDialogue] user %d lost admin rights before %s (err=%v)", ev.UserID, out.Previous, err)
		return
	}

	m := r.texts.Messages
	target := out.AdminUserID
	var text string
	switch out.Previous {
	case state.StageAddingAdmin:
		added, err := r.auth.AddAdmin(ctx, target)
		switch {
		case err != nil:
			log.Printf("[finishAdminDialogue] add admin %d: %v", target, err)
			text = m.InternalError
		case added:
			text = fmt.Sprintf(m.AdminAdded, target)
		default:
			text = fmt.Sprintf(m.AdminExists, target)
		}
	case state.StageRemovingAdmin:
		err := r.auth.RemoveAdmin(ctx, target)
		switch {
		case err == nil:
			text = fmt.Sprintf(m.AdminRemoved, target)
		case isNotFound(err):
			text = fmt.Sprintf(m.AdminNotFound, target)
		default:
			log.Printf("[finishAdminDialogue] remove admin %d: %v", target, err)
			text = m.InternalError
		}
	default:
		log.Printf("[finishAdminDialogue] unexpected stage %s for user %d", out.Previous, ev.UserID)
		text = m.InternalError
	}
	r.sendMainMenu(ctx, ev.ChatID, ev.UserID, text)
}

func (r *Router) confirmRecord(ctx context.Context, ev Event) {
	r.answer(ctx, ev, "")

	rec, err := r.records.Confirm(ctx, ev.UserID)
	if err != nil {
		if ve, ok := domain.AsValidation(err); ok {
			log.Printf("[confirmRecord] user %d: %v", ev.UserID, ve)
			r.send(ctx, ev.ChatID, r.texts.Messages.DateNotFuture+"\n\n"+r.promptFor(state.StageWaitingDate), r.cancelKeyboard())
			return
		}
		if errors.Is(err, domain.ErrStateDesync) {
			r.desync(ctx, ev, err)
			return
		}
		log.Printf("[confirmRecord] user %d: %v", ev.UserID, err)
		r.send(ctx, ev.ChatID, r.texts.Messages.InternalError, nil)
		return
	}

	if ev.MessageText != "" {
		if _, err := r.bot.EditMessage(ctx, ev.ChatID, ev.MessageID, ev.MessageText, emptyInlineKeyboard()); err != nil {
			log.Printf("[confirmRecord] removing confirm button from message %d: %v", ev.MessageID, err)
		}
	}
	log.Printf("[confirmRecord] user %d saved record %d", ev.UserID, rec.ID)
	r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.Saved)
}
