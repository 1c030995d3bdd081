// Package telegramadapter implements botport.BotPort on top of bot.Client.
package telegramadapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"telegramdebtlog/pkg/bot"
	"telegramdebtlog/pkg/ports/botport"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	opSend     = "send_message"
	opEdit     = "edit_message"
	opCallback = "answer_callback"
	opDelete   = "delete_message"
)

// Logger defines the minimal logging interface used by the adapter.
type Logger interface {
	Printf(format string, args ...any)
}

type telegramClient interface {
	SendMessage(chatID int64, text string, markup any) (tgbotapi.Message, error)
	EditMessageText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	DeleteMessage(chatID int64, messageID int) error
}

// Adapter wraps a Telegram client and satisfies botport.BotPort.
type Adapter struct {
	client telegramClient
	logger Logger
}

var _ telegramClient = (*bot.Client)(nil)
var _ botport.BotPort = (*Adapter)(nil)

func New(client telegramClient, logger Logger) (*Adapter, error) {
	if client == nil {
		return nil, fmt.Errorf("telegramadapter: client is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{client: client, logger: logger}, nil
}

// SendMessage posts text with an optional reply or inline keyboard.
func (a *Adapter) SendMessage(ctx context.Context, chatID int64, text string, markup any) (botport.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return botport.Delivery{}, botport.ContextError(opSend, err)
	}
	kind, buttons, err := describeMarkup(markup)
	if err != nil {
		return botport.Delivery{}, botport.NewBotError(opSend, botport.CodeBadPayload, err)
	}
	msg, err := a.client.SendMessage(chatID, text, markup)
	if err != nil {
		return botport.Delivery{}, a.fail(opSend, chatID, 0, err)
	}
	d := delivery(msg, chatID, kind, buttons)
	a.logger.Printf("[telegramadapter.SendMessage] chat=%d message=%d keyboard=%q", d.ChatID, d.MessageID, d.Keyboard)
	return d, nil
}

// EditMessage replaces the text of a sent message. Telegram only lets inline
// keyboards travel with an edit, so any other markup is rejected up front.
func (a *Adapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup any) (botport.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return botport.Delivery{}, botport.ContextError(opEdit, err)
	}
	inline, err := inlineKeyboard(markup)
	if err != nil {
		return botport.Delivery{}, botport.NewBotError(opEdit, botport.CodeBadPayload, err)
	}
	msg, err := a.client.EditMessageText(chatID, messageID, text, inline)
	if err != nil {
		return botport.Delivery{}, a.fail(opEdit, chatID, messageID, err)
	}
	kind, buttons := botport.KeyboardNone, []string(nil)
	if inline != nil {
		kind, buttons = botport.KeyboardInline, inlineLabels(inline.InlineKeyboard)
	}
	if msg.MessageID == 0 {
		msg.MessageID = messageID
	}
	d := delivery(msg, chatID, kind, buttons)
	a.logger.Printf("[telegramadapter.EditMessage] chat=%d message=%d", d.ChatID, d.MessageID)
	return d, nil
}

// AnswerCallback acknowledges a callback query, optionally with a toast text.
func (a *Adapter) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	if err := ctx.Err(); err != nil {
		return botport.ContextError(opCallback, err)
	}
	if err := a.client.AnswerCallback(callbackID, text); err != nil {
		return a.fail(opCallback, 0, 0, err)
	}
	return nil
}

// DeleteMessage removes a message from the chat.
func (a *Adapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return botport.ContextError(opDelete, err)
	}
	if messageID == 0 {
		return botport.NewBotError(opDelete, botport.CodeBadPayload, errors.New("message id is zero"))
	}
	if err := a.client.DeleteMessage(chatID, messageID); err != nil {
		return a.fail(opDelete, chatID, messageID, err)
	}
	a.logger.Printf("[telegramadapter.DeleteMessage] chat=%d message=%d", chatID, messageID)
	return nil
}

func (a *Adapter) fail(op string, chatID int64, messageID int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return botport.ContextError(op, err)
	}
	code, retry := classifyTelegramError(err)
	a.logger.Printf("[telegramadapter.%s] chat=%d message=%d code=%s: %v", op, chatID, messageID, code, err)
	return &botport.BotError{Op: op, Code: code, RetryAfter: retry, Wrapped: err}
}

func delivery(msg tgbotapi.Message, chatID int64, kind botport.Keyboard, buttons []string) botport.Delivery {
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}
	return botport.Delivery{
		ChatID:    chatID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Keyboard:  kind,
		Buttons:   buttons,
	}
}

func inlineKeyboard(markup any) (*tgbotapi.InlineKeyboardMarkup, error) {
	switch v := markup.(type) {
	case nil:
		return nil, nil
	case tgbotapi.InlineKeyboardMarkup:
		return &v, nil
	case *tgbotapi.InlineKeyboardMarkup:
		return v, nil
	default:
		return nil, fmt.Errorf("edit cannot carry markup %T", markup)
	}
}

func describeMarkup(markup any) (botport.Keyboard, []string, error) {
	switch v := markup.(type) {
	case nil:
		return botport.KeyboardNone, nil, nil
	case tgbotapi.InlineKeyboardMarkup:
		return botport.KeyboardInline, inlineLabels(v.InlineKeyboard), nil
	case *tgbotapi.InlineKeyboardMarkup:
		return botport.KeyboardInline, inlineLabels(v.InlineKeyboard), nil
	case tgbotapi.ReplyKeyboardMarkup:
		return botport.KeyboardReply, replyLabels(v.Keyboard), nil
	case *tgbotapi.ReplyKeyboardMarkup:
		return botport.KeyboardReply, replyLabels(v.Keyboard), nil
	case tgbotapi.ReplyKeyboardRemove, *tgbotapi.ReplyKeyboardRemove:
		return botport.KeyboardRemove, nil, nil
	default:
		return botport.KeyboardNone, nil, fmt.Errorf("unsupported markup type %T", markup)
	}
}

func inlineLabels(rows [][]tgbotapi.InlineKeyboardButton) []string {
	var out []string
	for _, row := range rows {
		for _, b := range row {
			out = append(out, b.Text)
		}
	}
	return out
}

func replyLabels(rows [][]tgbotapi.KeyboardButton) []string {
	var out []string
	for _, row := range rows {
		for _, b := range row {
			out = append(out, b.Text)
		}
	}
	return out
}

// errorRules maps fragments of Telegram error descriptions to codes, first match wins.
var errorRules = []struct {
	fragment string
	code     string
}{
	{"message is not modified", botport.CodeMessageNotModified},
	{"message to delete not found", botport.CodeMessageNotFound},
	{"message to edit not found", botport.CodeMessageNotFound},
	{"too many requests", botport.CodeRateLimited},
	{"bad request", botport.CodeBadRequest},
	{"forbidden", botport.CodeForbidden},
}

func classifyTelegramError(err error) (string, time.Duration) {
	if err == nil {
		return botport.CodeUnknown, 0
	}
	desc := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		if !strings.Contains(desc, rule.fragment) {
			continue
		}
		if rule.code == botport.CodeRateLimited {
			return rule.code, retryAfter(err, desc)
		}
		return rule.code, 0
	}
	return botport.CodeUnknown, 0
}

// retryAfter prefers the API's response parameters and falls back to the
// "retry after N" suffix of the description.
func retryAfter(err error, desc string) time.Duration {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	_, tail, ok := strings.Cut(desc, "retry after ")
	if !ok {
		return 0
	}
	digits := strings.FieldsFunc(tail, func(r rune) bool { return r < '0' || r > '9' })
	if len(digits) == 0 {
		return 0
	}
	seconds, convErr := strconv.Atoi(digits[0])
	if convErr != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
