package config

import (
	"fmt"
	"strings"
)

// Texts holds every user-visible string: reply keyboard labels, inline button
// captions, dialogue prompts and status messages.
type Texts struct {
	Buttons  ButtonTexts  `yaml:"buttons"`
	Prompts  PromptTexts  `yaml:"prompts"`
	Messages MessageTexts `yaml:"messages"`
}

type ButtonTexts struct {
	NewRecord    string `yaml:"new_record"`
	MyRecords    string `yaml:"my_records"`
	AllRecords   string `yaml:"all_records"`
	ManageAdmins string `yaml:"manage_admins"`
	Help         string `yaml:"help"`
	Cancel       string `yaml:"cancel"`
	Confirm      string `yaml:"confirm"`
	AddAdmin     string `yaml:"add_admin"`
	RemoveAdmin  string `yaml:"remove_admin"`
	ListAdmins   string `yaml:"list_admins"`
	MarkDone     string `yaml:"mark_done"`
	MarkUndone   string `yaml:"mark_undone"`
	DeleteRecord string `yaml:"delete_record"`
}

type PromptTexts struct {
	FullName    string `yaml:"full_name"`
	Group       string `yaml:"group"`
	Subject     string `yaml:"subject"`
	Task        string `yaml:"task"`
	DueDate     string `yaml:"due_date"`
	Confirm     string `yaml:"confirm"`
	AddAdmin    string `yaml:"add_admin"`
	RemoveAdmin string `yaml:"remove_admin"`
}

type MessageTexts struct {
	MainMenu       string `yaml:"main_menu"`
	Cancelled      string `yaml:"cancelled"`
	UseMenu        string `yaml:"use_menu"`
	Saved          string `yaml:"saved"`
	NoRecords      string `yaml:"no_records"`
	NoRecordsAll   string `yaml:"no_records_all"`
	RecordNotFound string `yaml:"record_not_found"`
	RecordDeleted  string `yaml:"record_deleted"`
	StatusChanged  string `yaml:"status_changed"`
	StatusDone     string `yaml:"status_done"`
	StatusPending  string `yaml:"status_pending"`
	NameLength     string `yaml:"name_length"`
	EmptyText      string `yaml:"empty_text"`
	DateFormat     string `yaml:"date_format"`
	DateNotFuture  string `yaml:"date_not_future"`
	AwaitConfirm   string `yaml:"await_confirm"`
	InvalidUserID  string `yaml:"invalid_user_id"`
	AdminAdded     string `yaml:"admin_added"`
	AdminExists    string `yaml:"admin_exists"`
	AdminRemoved   string `yaml:"admin_removed"`
	AdminNotFound  string `yaml:"admin_not_found"`
	AdminPanel     string `yaml:"admin_panel"`
	AdminsHeader   string `yaml:"admins_header"`
	AdminsEmpty    string `yaml:"admins_empty"`
	HelpUser       string `yaml:"help_user"`
	HelpAdmin      string `yaml:"help_admin"`
	InternalError  string `yaml:"internal_error"`
}

func (t *Texts) Validate() error {
	if t == nil {
		return fmt.Errorf("texts are nil")
	}

	required := []struct {
		key   string
		value string
	}{
		{"buttons.new_record", t.Buttons.NewRecord},
		{"buttons.my_records", t.Buttons.MyRecords},
		{"buttons.all_records", t.Buttons.AllRecords},
		{"buttons.manage_admins", t.Buttons.ManageAdmins},
		{"buttons.help", t.Buttons.Help},
		{"buttons.cancel", t.Buttons.Cancel},
		{"buttons.confirm", t.Buttons.Confirm},
		{"buttons.add_admin", t.Buttons.AddAdmin},
		{"buttons.remove_admin", t.Buttons.RemoveAdmin},
		{"buttons.list_admins", t.Buttons.ListAdmins},
		{"buttons.mark_done", t.Buttons.MarkDone},
		{"buttons.mark_undone", t.Buttons.MarkUndone},
		{"buttons.delete_record", t.Buttons.DeleteRecord},
		{"prompts.full_name", t.Prompts.FullName},
		{"prompts.group", t.Prompts.Group},
		{"prompts.subject", t.Prompts.Subject},
		{"prompts.task", t.Prompts.Task},
		{"prompts.due_date", t.Prompts.DueDate},
		{"prompts.confirm", t.Prompts.Confirm},
		{"prompts.add_admin", t.Prompts.AddAdmin},
		{"prompts.remove_admin", t.Prompts.RemoveAdmin},
		{"messages.main_menu", t.Messages.MainMenu},
		{"messages.cancelled", t.Messages.Cancelled},
		{"messages.use_menu", t.Messages.UseMenu},
		{"messages.saved", t.Messages.Saved},
		{"messages.no_records", t.Messages.NoRecords},
		{"messages.no_records_all", t.Messages.NoRecordsAll},
		{"messages.record_not_found", t.Messages.RecordNotFound},
		{"messages.record_deleted", t.Messages.RecordDeleted},
		{"messages.status_changed", t.Messages.StatusChanged},
		{"messages.status_done", t.Messages.StatusDone},
		{"messages.status_pending", t.Messages.StatusPending},
		{"messages.name_length", t.Messages.NameLength},
		{"messages.empty_text", t.Messages.EmptyText},
		{"messages.date_format", t.Messages.DateFormat},
		{"messages.date_not_future", t.Messages.DateNotFuture},
		{"messages.await_confirm", t.Messages.AwaitConfirm},
		{"messages.invalid_user_id", t.Messages.InvalidUserID},
		{"messages.admin_added", t.Messages.AdminAdded},
		{"messages.admin_exists", t.Messages.AdminExists},
		{"messages.admin_removed", t.Messages.AdminRemoved},
		{"messages.admin_not_found", t.Messages.AdminNotFound},
		{"messages.admin_panel", t.Messages.AdminPanel},
		{"messages.admins_header", t.Messages.AdminsHeader},
		{"messages.admins_empty", t.Messages.AdminsEmpty},
		{"messages.help_user", t.Messages.HelpUser},
		{"messages.help_admin", t.Messages.HelpAdmin},
		{"messages.internal_error", t.Messages.InternalError},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("texts validation failed: '%s' is empty", r.key)
		}
	}

	// Menu labels are matched exactly against incoming text, so they must be distinct.
	labels := map[string]string{}
	for _, l := range []struct{ key, value string }{
		{"buttons.new_record", t.Buttons.NewRecord},
		{"buttons.my_records", t.Buttons.MyRecords},
		{"buttons.all_records", t.Buttons.AllRecords},
		{"buttons.manage_admins", t.Buttons.ManageAdmins},
		{"buttons.help", t.Buttons.Help},
		{"buttons.cancel", t.Buttons.Cancel},
	} {
		if other, dup := labels[l.value]; dup {
			return fmt.Errorf("texts validation failed: '%s' and '%s' share the label '%s'", other, l.key, l.value)
		}
		labels[l.value] = l.key
	}

	for _, f := range []struct {
		key   string
		value string
		verb  string
	}{
		{"prompts.due_date", t.Prompts.DueDate, "%s"},
		{"messages.date_format", t.Messages.DateFormat, "%s"},
		{"messages.status_changed", t.Messages.StatusChanged, "%s"},
		{"messages.admin_added", t.Messages.AdminAdded, "%d"},
		{"messages.admin_exists", t.Messages.AdminExists, "%d"},
		{"messages.admin_removed", t.Messages.AdminRemoved, "%d"},
		{"messages.admin_not_found", t.Messages.AdminNotFound, "%d"},
	} {
		if strings.Count(f.value, f.verb) != 1 {
			return fmt.Errorf("texts validation failed: '%s' must contain exactly one %s placeholder", f.key, f.verb)
		}
	}
	return nil
}
