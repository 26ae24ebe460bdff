package ports

import "context"

// Command is a subprocess invocation.
type Command struct {
	Path string
	Args []string
	Dir  string // working directory; empty means the caller's
}

// CommandResult is what a finished subprocess left behind.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner abstracts subprocess execution.
type CommandRunner interface {
	// Run blocks until the command exits. A non-zero exit is reported through
	// ExitCode, not the error; the error is set only when the command could not
	// be run at all.
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}
