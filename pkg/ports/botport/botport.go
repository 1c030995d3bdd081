// Package botport is the outbound port between the command router and chat transports.
package botport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Normalized BotError codes.
const (
	CodeBadPayload         = "bad_payload"
	CodeBadRequest         = "bad_request"
	CodeForbidden          = "forbidden"
	CodeRateLimited        = "rate_limited"
	CodeMessageNotModified = "message_not_modified"
	CodeMessageNotFound    = "message_not_found"
	CodeContextCanceled    = "context_canceled"
	CodeContextDeadline    = "context_deadline"
	CodeContextError       = "context_error"
	CodeUnknown            = "unknown"
)

// Keyboard is the kind of markup attached to a delivered message.
type Keyboard string

const (
	KeyboardNone   Keyboard = ""
	KeyboardReply  Keyboard = "reply"
	KeyboardInline Keyboard = "inline"
	KeyboardRemove Keyboard = "remove"
)

// Delivery describes a message the transport has sent or edited.
type Delivery struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  Keyboard
	// Buttons holds the visible labels, row by row flattened.
	Buttons []string
}

// BotError wraps transport failures with a normalized code and retry hint.
type BotError struct {
	Op         string
	Code       string
	RetryAfter time.Duration
	Wrapped    error
}

func (e *BotError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *BotError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

func NewBotError(op, code string, err error) *BotError {
	return &BotError{Op: op, Code: code, Wrapped: err}
}

// ContextError maps a cancelled or expired context to its BotError code.
func ContextError(op string, err error) *BotError {
	code := CodeContextError
	switch {
	case errors.Is(err, context.Canceled):
		code = CodeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeContextDeadline
	}
	return NewBotError(op, code, err)
}

// IsCode reports whether err is a BotError with the given code.
func IsCode(err error, code string) bool {
	var be *BotError
	return errors.As(err, &be) && be != nil && be.Code == code
}

// BotPort is everything the router needs from a chat transport.
type BotPort interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) (Delivery, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup any) (Delivery, error)
	AnswerCallback(ctx context.Context, callbackID string, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
