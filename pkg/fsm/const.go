package fsm

const (
	// EventSubmit advances a dialogue after valid input.
	EventSubmit = "submit"
	// EventReviseDate sends a completed draft back to the date stage.
	EventReviseDate = "revise_date"
)
