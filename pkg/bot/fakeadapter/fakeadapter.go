package fakeadapter

import (
	"context"
	"errors"
	"sync"

	"telegramdebtlog/pkg/ports/botport"
)

const (
	OpSend     = "send_message"
	OpEdit     = "edit_message"
	OpCallback = "answer_callback"
	OpDelete   = "delete_message"
)

// FakeAdapter implements botport.BotPort in memory and records every call.
type FakeAdapter struct {
	mu            sync.Mutex
	Calls         []Call
	NextMessageID int
	FailNext      map[string]error
}

// Call captures a bot operation invocation.
type Call struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
	Markup    any
	Callback  string
}

var _ botport.BotPort = (*FakeAdapter)(nil)

func (f *FakeAdapter) SendMessage(ctx context.Context, chatID int64, text string, markup any) (botport.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return botport.Delivery{}, botport.ContextError(OpSend, err)
	}
	if err := f.maybeFail(OpSend); err != nil {
		return botport.Delivery{}, err
	}
	msgID := f.nextMessageID()
	f.record(Call{Op: OpSend, ChatID: chatID, MessageID: msgID, Text: text, Markup: markup})
	return f.delivery(chatID, msgID, text), nil
}

func (f *FakeAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup any) (botport.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return botport.Delivery{}, botport.ContextError(OpEdit, err)
	}
	if err := f.maybeFail(OpEdit); err != nil {
		return botport.Delivery{}, err
	}
	if messageID == 0 {
		messageID = f.nextMessageID()
	}
	f.record(Call{Op: OpEdit, ChatID: chatID, MessageID: messageID, Text: text, Markup: markup})
	return f.delivery(chatID, messageID, text), nil
}

func (f *FakeAdapter) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	if err := ctx.Err(); err != nil {
		return botport.ContextError(OpCallback, err)
	}
	if err := f.maybeFail(OpCallback); err != nil {
		return err
	}
	f.record(Call{Op: OpCallback, Callback: callbackID, Text: text})
	return nil
}

func (f *FakeAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return botport.ContextError(OpDelete, err)
	}
	if err := f.maybeFail(OpDelete); err != nil {
		return err
	}
	f.record(Call{Op: OpDelete, ChatID: chatID, MessageID: messageID})
	return nil
}

// Fail makes the next call for op return err, wrapped as a BotError if needed.
func (f *FakeAdapter) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNext == nil {
		f.FailNext = make(map[string]error)
	}
	f.FailNext[op] = err
}

// LastCall returns the most recent call for op, or nil.
func (f *FakeAdapter) LastCall(op string) *Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Calls) - 1; i >= 0; i-- {
		if f.Calls[i].Op == op {
			c := f.Calls[i]
			return &c
		}
	}
	return nil
}

// CallsFor returns a copy of all recorded calls for op in order.
func (f *FakeAdapter) CallsFor(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls and pending failures.
func (f *FakeAdapter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
	f.FailNext = nil
}

func (f *FakeAdapter) delivery(chatID int64, messageID int, text string) botport.Delivery {
	return botport.Delivery{ChatID: chatID, MessageID: messageID, Text: text}
}

func (f *FakeAdapter) nextMessageID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NextMessageID == 0 {
		f.NextMessageID = 1
	}
	id := f.NextMessageID
	f.NextMessageID++
	return id
}

func (f *FakeAdapter) record(call Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *FakeAdapter) maybeFail(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.FailNext[op]
	if !ok {
		return nil
	}
	delete(f.FailNext, op)
	var be *botport.BotError
	if errors.As(err, &be) {
		return err
	}
	return &botport.BotError{Op: op, Code: "fake_error", Wrapped: err}
}

// Forbidden scripts the error Telegram returns when the user blocked the bot.
func Forbidden(op string) *botport.BotError {
	return &botport.BotError{Op: op, Code: botport.CodeForbidden, Wrapped: errors.New("bot was blocked by the user")}
}
