// Package realexec provides the CommandRunner port on top of os/exec.
package realexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/acolita/boardlink/internal/ports"
)

// Runner implements ports.CommandRunner with os/exec.
type Runner struct{}

// New returns a new real command runner.
func New() *Runner {
	return &Runner{}
}

// Run starts the command, waits for it and returns its captured output.
func (r *Runner) Run(ctx context.Context, cmd ports.Command) (ports.CommandResult, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := ports.CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		result.ExitCode = -1
		return result, err
	}
}

// Ensure Runner implements ports.CommandRunner.
var _ ports.CommandRunner = (*Runner)(nil)
