// Package realdialog provides a TUI-based DialogProvider using charmbracelet/huh.
//
// The selector is two short forms: the port list first, then the action list.
// Picking the refresh entry ends the first form right away so the caller can
// rescan before anything else is asked. The programming view is a huh spinner
// that spins until the caller closes the done channel.
package realdialog

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/acolita/boardlink/internal/ports"
)

// placeholderLabel is shown for the empty entry used when no port was found.
const placeholderLabel = "(no ports found)"

// Provider implements ports.DialogProvider with huh forms on the controlling terminal.
type Provider struct {
	accessible bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithAccessible switches huh to its line-based accessible mode, which also
// works when stdin is not a terminal.
func WithAccessible(on bool) Option {
	return func(p *Provider) {
		p.accessible = on
	}
}

// New returns a new TUI dialog provider.
func New(opts ...Option) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Selector shows the port list and then, unless the refresh entry was picked,
// the actions the view allows.
func (p *Provider) Selector(ctx context.Context, view ports.SelectorView) (ports.Choice, error) {
	index := view.Selected

	portForm := p.form(huh.NewGroup(
		huh.NewSelect[int]().
			Title(view.Title).
			Options(portOptions(view.Ports)...).
			Value(&index),
	))
	if err := portForm.RunWithContext(ctx); err != nil {
		return abortedOr(err)
	}

	if index == len(view.Ports)-1 {
		return ports.Choice{Index: index, Action: ports.ActionSelect}, nil
	}

	enabled := view.ControlsEnabled && view.Ports[index] != ""
	action := ports.ActionSelect
	if enabled {
		action = ports.ActionConnect
	}

	actionForm := p.form(huh.NewGroup(
		huh.NewSelect[ports.Action]().
			Title(portLabel(view.Ports[index])).
			Options(actionOptions(enabled)...).
			Value(&action),
	))
	if err := actionForm.RunWithContext(ctx); err != nil {
		return abortedOr(err)
	}

	return ports.Choice{Index: index, Action: action}, nil
}

// Progress spins with the given title until done is closed or ctx ends.
func (p *Provider) Progress(ctx context.Context, title string, done <-chan struct{}) error {
	return spinner.New().
		Title(title).
		Context(ctx).
		Accessible(p.accessible).
		Action(func() {
			select {
			case <-done:
			case <-ctx.Done():
			}
		}).
		Run()
}

// Warn shows a note the user has to acknowledge.
func (p *Provider) Warn(ctx context.Context, title, message string) error {
	form := p.form(huh.NewGroup(
		huh.NewNote().
			Title(title).
			Description(message).
			Next(true).
			NextLabel("OK"),
	))
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func (p *Provider) form(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithAccessible(p.accessible)
}

// portOptions labels every entry; the values are list indexes so the empty
// placeholder stays distinguishable from real ports.
func portOptions(names []string) []huh.Option[int] {
	opts := make([]huh.Option[int], len(names))
	for i, name := range names {
		opts[i] = huh.NewOption(portLabel(name), i)
	}
	return opts
}

func portLabel(name string) string {
	if name == "" {
		return placeholderLabel
	}
	return name
}

func actionOptions(controlsEnabled bool) []huh.Option[ports.Action] {
	var opts []huh.Option[ports.Action]
	if controlsEnabled {
		opts = append(opts,
			huh.NewOption("Connect", ports.ActionConnect),
			huh.NewOption("Program", ports.ActionProgram),
		)
	}
	return append(opts,
		huh.NewOption("Back", ports.ActionSelect),
		huh.NewOption("Exit", ports.ActionExit),
	)
}

// abortedOr maps Ctrl-C to the exit control.
func abortedOr(err error) (ports.Choice, error) {
	if errors.Is(err, huh.ErrUserAborted) {
		return ports.Choice{Action: ports.ActionExit}, nil
	}
	return ports.Choice{}, err
}

// Ensure Provider implements ports.DialogProvider.
var _ ports.DialogProvider = (*Provider)(nil)
