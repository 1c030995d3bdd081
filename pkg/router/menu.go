package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendMainMenu sends text with the main reply keyboard. The admin rows are only
// shown after a successful admin check; a failed check renders the plain menu.
func (r *Router) sendMainMenu(ctx context.Context, chatID, userID int64, text string) {
	isAdmin, err := r.auth.IsAdmin(ctx, userID)
	if err != nil {
		log.Printf("[sendMainMenu] admin check for user %d failed, rendering user menu: %v", userID, err)
		isAdmin = false
	}
	r.send(ctx, chatID, text, r.mainMenuKeyboard(isAdmin))
}

func (r *Router) mainMenuKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	b := r.texts.Buttons
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.NewRecord),
			tgbotapi.NewKeyboardButton(b.MyRecords),
		),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.AllRecords),
			tgbotapi.NewKeyboardButton(b.ManageAdmins),
		))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(b.Help)))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func (r *Router) cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(r.texts.Buttons.Cancel)),
	)
}

func (r *Router) confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(r.texts.Buttons.Confirm, CallbackConfirm),
		),
	)
}

func (r *Router) adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	b := r.texts.Buttons
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.AddAdmin, CallbackAddAdmin),
			tgbotapi.NewInlineKeyboardButtonData(b.RemoveAdmin, CallbackRemoveAdmin),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.ListAdmins, CallbackListAdmins),
		),
	)
}

func emptyInlineKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

func (r *Router) showHelp(ctx context.Context, ev Event) {
	isAdmin, err := r.auth.IsAdmin(ctx, ev.UserID)
	if err != nil {
		log.Printf("[showHelp] admin check for user %d failed: %v", ev.UserID, err)
		isAdmin = false
	}
	text := r.texts.Messages.HelpUser
	if isAdmin {
		text += "\n\n" + r.texts.Messages.HelpAdmin
	}
	r.send(ctx, ev.ChatID, text, r.mainMenuKeyboard(isAdmin))
}

func (r *Router) showAdminPanel(ctx context.Context, ev Event) {
	r.send(ctx, ev.ChatID, r.texts.Messages.AdminPanel, r.adminPanelKeyboard())
}

func (r *Router) listAdmins(ctx context.Context, ev Event) {
	r.answer(ctx, ev, "")
	admins, err := r.auth.ListAdmins(ctx)
	if err != nil {
		log.Printf("[listAdmins] %v", err)
		r.send(ctx, ev.ChatID, r.texts.Messages.InternalError, nil)
		return
	}
	if len(admins) == 0 {
		r.send(ctx, ev.ChatID, r.texts.Messages.AdminsEmpty, nil)
		return
	}
	var sb strings.Builder
	sb.WriteString(r.texts.Messages.AdminsHeader)
	for _, a := range admins {
		sb.WriteString(fmt.Sprintf("\n• ID: %d", a.UserID))
	}
	r.send(ctx, ev.ChatID, sb.String(), nil)
}
