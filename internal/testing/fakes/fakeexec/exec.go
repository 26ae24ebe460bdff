// Package fakeexec provides a scripted CommandRunner for testing.
package fakeexec

import (
	"context"
	"sync"

	"github.com/acolita/boardlink/internal/ports"
)

// Response is one scripted answer.
type Response struct {
	Result ports.CommandResult
	Err    error
}

// Runner is a fake ports.CommandRunner.
type Runner struct {
	mu sync.Mutex

	// Responses are consumed in order; Default answers once they run out.
	Responses []Response
	Default   Response

	// Gate, when non-nil, holds every Run until it is closed.
	Gate chan struct{}

	// Calls records every command passed to Run.
	Calls []ports.Command
}

// New returns a runner answering every call with stderr.
func New(stderr string) *Runner {
	return &Runner{Default: Response{Result: ports.CommandResult{Stderr: []byte(stderr)}}}
}

// Run records the command and returns the next scripted response.
func (r *Runner) Run(ctx context.Context, cmd ports.Command) (ports.CommandResult, error) {
	r.mu.Lock()
	cmd.Args = append([]string(nil), cmd.Args...)
	r.Calls = append(r.Calls, cmd)
	gate := r.Gate
	resp := r.Default
	if len(r.Responses) > 0 {
		resp = r.Responses[0]
		r.Responses = r.Responses[1:]
	}
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ports.CommandResult{ExitCode: -1}, ctx.Err()
		}
	}
	return resp.Result, resp.Err
}

// CallCount returns how many times Run was called.
func (r *Runner) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

// LastCall returns the most recent command.
func (r *Runner) LastCall() ports.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Calls) == 0 {
		return ports.Command{}
	}
	return r.Calls[len(r.Calls)-1]
}

// Ensure Runner implements ports.CommandRunner.
var _ ports.CommandRunner = (*Runner)(nil)
