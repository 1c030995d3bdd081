package router

const CommandStart = "/start"

// Inline callback tokens.
const (
	CallbackConfirm      = "confirm"
	CallbackAddAdmin     = "add_admin"
	CallbackRemoveAdmin  = "remove_admin"
	CallbackListAdmins   = "list_admins"
	CallbackTogglePrefix = "toggle_"
	CallbackDeletePrefix = "delete_"
)

// EventKind tells messages and callback presses apart.
type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventCallback:
		return "callback"
	default:
		return "unknown"
	}
}
