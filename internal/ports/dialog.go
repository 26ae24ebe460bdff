package ports

import "context"

// Action is what the user asked for from the port selector.
type Action string

const (
	// ActionSelect means the selection changed and nothing else was requested.
	ActionSelect Action = "select"
	// ActionConnect opens a Firmata connection on the selected port.
	ActionConnect Action = "connect"
	// ActionProgram flashes the firmware image through the selected port.
	ActionProgram Action = "program"
	// ActionExit closes the dialog without a board.
	ActionExit Action = "exit"
)

// SelectorView is the state rendered by the port selector.
type SelectorView struct {
	Title           string
	Ports           []string // last entry is always the refresh label
	Selected        int
	ControlsEnabled bool // connect and program are only offered when true
}

// Choice is the user's answer to a SelectorView.
type Choice struct {
	Index  int
	Action Action
}

// DialogProvider abstracts interactive user dialogs.
// Implementations may use TUI forms, native OS dialogs, or test fakes.
type DialogProvider interface {
	// Selector shows the port list and the available controls.
	Selector(ctx context.Context, view SelectorView) (Choice, error)

	// Progress shows a busy view with the given title until done is closed.
	Progress(ctx context.Context, title string, done <-chan struct{}) error

	// Warn shows a message the user has to acknowledge.
	Warn(ctx context.Context, title, message string) error
}
