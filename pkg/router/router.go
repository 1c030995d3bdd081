// Package router is the single entry point for inbound bot events. It serializes
// each user's events, advances dialogues and dispatches menu and admin commands.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"telegramdebtlog/pkg/config"
	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/fsm"
	"telegramdebtlog/pkg/ports/botport"
	"telegramdebtlog/pkg/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Conversations is the dialogue engine as seen by the router.
type Conversations interface {
	Lock(userID int64) func()
	Begin(userID int64, kind state.Kind) (state.Stage, error)
	HasState(userID int64) bool
	Step(ctx context.Context, userID int64, input string) (fsm.Outcome, error)
	Cancel(userID int64) bool
	Location() *time.Location
	Now() time.Time
}

// Authorizer answers admin checks and edits the roster.
type Authorizer interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AddAdmin(ctx context.Context, userID int64) (bool, error)
	RemoveAdmin(ctx context.Context, userID int64) error
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
}

// Lifecycle persists and mutates debt records.
type Lifecycle interface {
	Confirm(ctx context.Context, userID int64) (domain.DebtRecord, error)
	Toggle(ctx context.Context, id uint) (domain.DebtRecord, error)
	Delete(ctx context.Context, id uint) error
	ListForUser(ctx context.Context, userID int64) ([]domain.DebtRecord, error)
	ListAll(ctx context.Context) ([]domain.DebtRecord, error)
}

// Event is one inbound interaction. For callbacks Text holds the callback data
// and MessageText the text of the message the button belongs to.
type Event struct {
	Kind        EventKind
	UserID      int64
	ChatID      int64
	Text        string
	MessageID   int
	MessageText string
	CallbackID  string
}

type Dependencies struct {
	Bot     botport.BotPort
	Engine  Conversations
	Auth    Authorizer
	Records Lifecycle
	Texts   *config.Texts
}

type Router struct {
	bot     botport.BotPort
	engine  Conversations
	auth    Authorizer
	records Lifecycle
	texts   *config.Texts
}

func New(deps Dependencies) (*Router, error) {
	switch {
	case deps.Bot == nil:
		return nil, fmt.Errorf("router: bot port is nil")
	case deps.Engine == nil:
		return nil, fmt.Errorf("router: engine is nil")
	case deps.Auth == nil:
		return nil, fmt.Errorf("router: authorizer is nil")
	case deps.Records == nil:
		return nil, fmt.Errorf("router: record manager is nil")
	}
	texts := deps.Texts
	if texts == nil {
		var err error
		if texts, err = config.DefaultTexts(); err != nil {
			return nil, fmt.Errorf("router: %w", err)
		}
	}
	return &Router{
		bot:     deps.Bot,
		engine:  deps.Engine,
		auth:    deps.Auth,
		records: deps.Records,
		texts:   texts,
	}, nil
}

// HandleUpdate converts a Telegram update and handles it. Updates other than
// text messages and callback queries are ignored.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := EventFromUpdate(update)
	if !ok {
		log.Printf("[HandleUpdate] Ignoring update %d", update.UpdateID)
		return
	}
	r.Handle(ctx, ev)
}

// EventFromUpdate extracts an Event from a Telegram update.
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil || msg.Text == "" {
			return Event{}, false
		}
		text := msg.Text
		if msg.IsCommand() && msg.Command() == "start" {
			text = CommandStart
		}
		return Event{
			Kind:      EventMessage,
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			Text:      text,
			MessageID: msg.MessageID,
		}, true

	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return Event{}, false
		}
		return Event{
			Kind:        EventCallback,
			UserID:      q.From.ID,
			ChatID:      q.Message.Chat.ID,
			Text:        q.Data,
			MessageID:   q.Message.MessageID,
			MessageText: q.Message.Text,
			CallbackID:  q.ID,
		}, true
	}
	return Event{}, false
}

// Handle processes ev while holding the user's event lock. A panic is logged,
// the user's dialogue is dropped and a generic apology is sent.
func (r *Router) Handle(ctx context.Context, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Router.Handle] panic on %s from user %d: %v\n%s", ev.Kind, ev.UserID, rec, debug.Stack())
			r.engine.Cancel(ev.UserID)
			r.send(ctx, ev.ChatID, r.texts.Messages.InternalError, nil)
		}
	}()

	unlock := r.engine.Lock(ev.UserID)
	defer unlock()

	switch ev.Kind {
	case EventMessage:
		r.handleMessage(ctx, ev)
	case EventCallback:
		r.handleCallback(ctx, ev)
	default:
		log.Printf("[Router.Handle] unknown event kind %d from user %d", ev.Kind, ev.UserID)
	}
}

func (r *Router) handleMessage(ctx context.Context, ev Event) {
	text := strings.TrimSpace(ev.Text)
	b := r.texts.Buttons

	if text == CommandStart || text == b.Cancel {
		r.reset(ctx, ev)
		return
	}

	if r.engine.HasState(ev.UserID) {
		r.continueDialogue(ctx, ev, text)
		return
	}

	switch text {
	case b.NewRecord:
		r.startRecord(ctx, ev)
	case b.MyRecords:
		r.showUserRecords(ctx, ev)
	case b.AllRecords:
		r.adminOnly(ctx, ev, "all_records", r.showAllRecords)
	case b.ManageAdmins:
		r.adminOnly(ctx, ev, "manage_admins", r.showAdminPanel)
	case b.Help:
		r.showHelp(ctx, ev)
	default:
		r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.UseMenu)
	}
}

func (r *Router) handleCallback(ctx context.Context, ev Event) {
	data := ev.Text
	log.Printf("[handleCallback] user %d pressed %q", ev.UserID, data)

	switch {
	case data == CallbackConfirm:
		r.confirmRecord(ctx, ev)
	case data == CallbackAddAdmin:
		r.adminOnly(ctx, ev, data, func(ctx context.Context, ev Event) {
			r.beginAdminDialogue(ctx, ev, state.KindAddAdmin, r.texts.Prompts.AddAdmin)
		})
	case data == CallbackRemoveAdmin:
		r.adminOnly(ctx, ev, data, func(ctx context.Context, ev Event) {
			r.beginAdminDialogue(ctx, ev, state.KindRemoveAdmin, r.texts.Prompts.RemoveAdmin)
		})
	case data == CallbackListAdmins:
		r.adminOnly(ctx, ev, data, r.listAdmins)
	case strings.HasPrefix(data, CallbackTogglePrefix):
		r.adminOnly(ctx, ev, CallbackTogglePrefix, r.toggleRecord)
	case strings.HasPrefix(data, CallbackDeletePrefix):
		r.adminOnly(ctx, ev, CallbackDeletePrefix, r.deleteRecord)
	default:
		log.Printf("[handleCallback] unknown callback %q from user %d", data, ev.UserID)
		r.answer(ctx, ev, "")
	}
}

// adminOnly runs fn when the user is currently an admin. Anyone else gets no
// reply; a pressed button is still acknowledged so the client stops waiting.
func (r *Router) adminOnly(ctx context.Context, ev Event, action string, fn func(context.Context, Event)) {
	isAdmin, err := r.auth.IsAdmin(ctx, ev.UserID)
	if err != nil {
		log.Printf("[adminOnly] admin check for user %d failed: %v", ev.UserID, err)
		isAdmin = false
	}
	if !isAdmin {
		log.Printf("[adminOnly] user %d is not an admin, ignoring %s", ev.UserID, action)
		if ev.Kind == EventCallback {
			r.answer(ctx, ev, "")
		}
		return
	}
	fn(ctx, ev)
}

func (r *Router) reset(ctx context.Context, ev Event) {
	text := r.texts.Messages.MainMenu
	if r.engine.Cancel(ev.UserID) {
		log.Printf("[reset] user %d abandoned the current dialogue", ev.UserID)
		text = r.texts.Messages.Cancelled
	}
	r.sendMainMenu(ctx, ev.ChatID, ev.UserID, text)
}

// desync drops the user's dialogue after the engine and the request disagreed.
func (r *Router) desync(ctx context.Context, ev Event, err error) {
	log.Printf("[desync] user %d: %v", ev.UserID, err)
	r.engine.Cancel(ev.UserID)
	r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.InternalError)
}

func (r *Router) send(ctx context.Context, chatID int64, text string, markup any) {
	if _, err := r.bot.SendMessage(ctx, chatID, text, markup); err != nil {
		log.Printf("[send] chat %d: %v", chatID, err)
	}
}

func (r *Router) answer(ctx context.Context, ev Event, text string) {
	if ev.CallbackID == "" {
		return
	}
	if err := r.bot.AnswerCallback(ctx, ev.CallbackID, text); err != nil {
		log.Printf("[answer] callback %s for user %d: %v", ev.CallbackID, ev.UserID, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
