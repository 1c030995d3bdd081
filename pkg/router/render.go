package router

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"text/template"
	"time"

	"telegramdebtlog/pkg/domain"
	"telegramdebtlog/pkg/fsm/inputs"
	"telegramdebtlog/pkg/state"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type cardPayload struct {
	ID        uint
	UserID    int64
	ShowOwner bool
	FullName  string
	Group     string
	Subject   string
	Task      string
	Due       string
	Completed bool
}

var draftTpl = template.Must(template.New("draft").Parse(`👤 ФИО: {{.FullName}}
📚 Группа: {{.Group}}
📖 Предмет: {{.Subject}}
📝 Задание: {{.Task}}
📅 Срок: {{.Due}}`))

var cardTpl = template.Must(template.New("card").Parse(`📌 Запись #{{.ID}}
{{if .ShowOwner}}👤 Студент: {{.FullName}} (ID: {{.UserID}}){{else}}👤 ФИО: {{.FullName}}{{end}}
📚 Группа: {{.Group}}
📖 Предмет: {{.Subject}}
📝 Задание: {{.Task}}
📅 Срок: {{.Due}}
🏷 Статус: {{if .Completed}}✅ Выполнено{{else}}🕒 В процессе{{end}}`))

func renderDraft(d state.Draft, loc *time.Location) (string, error) {
	return execute(draftTpl, cardPayload{
		FullName: d.FullName,
		Group:    d.Group,
		Subject:  d.Subject,
		Task:     d.TaskDescription,
		Due:      inputs.FormatDueDate(d.DueDate, loc),
	})
}

// renderRecord renders a stored record. showOwner adds the student's user ID,
// which only admins see.
func renderRecord(rec domain.DebtRecord, loc *time.Location, showOwner bool) (string, error) {
	return execute(cardTpl, cardPayload{
		ID:        rec.ID,
		UserID:    rec.UserID,
		ShowOwner: showOwner,
		FullName:  rec.FullName,
		Group:     rec.Group,
		Subject:   rec.Subject,
		Task:      rec.TaskDescription,
		Due:       inputs.FormatDueDate(rec.DueDate, loc),
		Completed: rec.IsCompleted,
	})
}

func execute(tpl *template.Template, payload cardPayload) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Router) recordKeyboard(rec domain.DebtRecord) tgbotapi.InlineKeyboardMarkup {
	b := r.texts.Buttons
	toggle := b.MarkDone
	if rec.IsCompleted {
		toggle = b.MarkUndone
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggle, CallbackTogglePrefix+strconv.FormatUint(uint64(rec.ID), 10)),
			tgbotapi.NewInlineKeyboardButtonData(b.DeleteRecord, CallbackDeletePrefix+strconv.FormatUint(uint64(rec.ID), 10)),
		),
	)
}

// parseRecordID extracts the record ID from callback data such as "toggle_12".
func parseRecordID(data, prefix string) (uint, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (r *Router) showUserRecords(ctx context.Context, ev Event) {
	recs, err := r.records.ListForUser(ctx, ev.UserID)
	if err != nil {
		log.Printf("[showUserRecords] user %d: %v", ev.UserID, err)
		r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.InternalError)
		return
	}
	if len(recs) == 0 {
		r.sendMainMenu(ctx, ev.ChatID, ev.UserID, r.texts.Messages.NoRecords)
		return
	}
	for _, rec := range recs {
		text, err := renderRecord(rec, r.engine.Location(), false)
		if err != nil {
			log.Printf("[showUserRecords] render record %d: %v", rec.ID, err)
			continue
		}
		r.send(ctx, ev.ChatID, text, nil)
	}
}

func (r *Router) showAllRecords(ctx context.Context, ev Event) {
	recs, err := r.records.ListAll(ctx)
	if err != nil {
		log.Printf("[showAllRecords] %v", err)
		r.send(ctx, ev.ChatID, r.texts.Messages.InternalError, nil)
		return
	}
	if len(recs) == 0 {
		r.send(ctx, ev.ChatID, r.texts.Messages.NoRecordsAll, nil)
		return
	}
	for _, rec := range recs {
		text, err := renderRecord(rec, r.engine.Location(), true)
		if err != nil {
			log.Printf("[showAllRecords] render record %d: %v", rec.ID, err)
			continue
		}
		r.send(ctx, ev.ChatID, text, r.recordKeyboard(rec))
	}
}

func (r *Router) toggleRecord(ctx context.Context, ev Event) {
	id, ok := parseRecordID(ev.Text, CallbackTogglePrefix)
	if !ok {
		log.Printf("[toggleRecord] bad callback data %q from user %d", ev.Text, ev.UserID)
		r.answer(ctx, ev, r.texts.Messages.RecordNotFound)
		return
	}
	rec, err := r.records.Toggle(ctx, id)
	if err != nil {
		if isNotFound(err) {
			r.answer(ctx, ev, r.texts.Messages.RecordNotFound)
			return
		}
		log.Printf("[toggleRecord] record %d: %v", id, err)
		r.answer(ctx, ev, r.texts.Messages.InternalError)
		return
	}

	text, err := renderRecord(rec, r.engine.Location(), true)
	if err == nil {
		if _, err := r.bot.EditMessage(ctx, ev.ChatID, ev.MessageID, text, r.recordKeyboard(rec)); err != nil {
			log.Printf("[toggleRecord] edit message %d: %v", ev.MessageID, err)
		}
	} else {
		log.Printf("[toggleRecord] render record %d: %v", rec.ID, err)
	}

	status := r.texts.Messages.StatusPending
	if rec.IsCompleted {
		status = r.texts.Messages.StatusDone
	}
	r.answer(ctx, ev, fmt.Sprintf(r.texts.Messages.StatusChanged, status))
}

func (r *Router) deleteRecord(ctx context.Context, ev Event) {
	id, ok := parseRecordID(ev.Text, CallbackDeletePrefix)
	if !ok {
		log.Printf("[deleteRecord] bad callback data %q from user %d", ev.Text, ev.UserID)
		r.answer(ctx, ev, r.texts.Messages.RecordNotFound)
		return
	}
	if err := r.records.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			r.answer(ctx, ev, r.texts.Messages.RecordNotFound)
			return
		}
		log.Printf("[deleteRecord] record %d: %v", id, err)
		r.answer(ctx, ev, r.texts.Messages.InternalError)
		return
	}
	if err := r.bot.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
		log.Printf("[deleteRecord] delete message %d: %v", ev.MessageID, err)
	}
	r.answer(ctx, ev, r.texts.Messages.RecordDeleted)
}
