// Package fakedialog provides a test fake for ports.DialogProvider.
package fakedialog

import (
	"context"
	"sync"

	"github.com/acolita/boardlink/internal/ports"
)

// Warning is one call to Warn.
type Warning struct {
	Title   string
	Message string
}

// Provider is a scripted fake DialogProvider for testing.
type Provider struct {
	mu sync.Mutex

	// Choices are returned by Selector in order. Once exhausted, Selector
	// answers ActionExit.
	Choices []ports.Choice
	// SelectorErr is returned by Selector when set.
	SelectorErr error

	// Views captures every view passed to Selector.
	Views []ports.SelectorView
	// Warnings captures every Warn call.
	Warnings []Warning
	// ProgressTitles captures every Progress call.
	ProgressTitles []string
}

// New returns a fake dialog provider that plays back the given choices.
func New(choices ...ports.Choice) *Provider {
	return &Provider{Choices: choices}
}

// Selector records the view and returns the next scripted choice.
func (p *Provider) Selector(ctx context.Context, view ports.SelectorView) (ports.Choice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	view.Ports = append([]string(nil), view.Ports...)
	p.Views = append(p.Views, view)

	if p.SelectorErr != nil {
		return ports.Choice{}, p.SelectorErr
	}
	if len(p.Choices) == 0 {
		return ports.Choice{Action: ports.ActionExit}, nil
	}
	choice := p.Choices[0]
	p.Choices = p.Choices[1:]
	return choice, nil
}

// Progress records the title and blocks until done is closed.
func (p *Provider) Progress(ctx context.Context, title string, done <-chan struct{}) error {
	p.mu.Lock()
	p.ProgressTitles = append(p.ProgressTitles, title)
	p.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Warn records the message.
func (p *Provider) Warn(ctx context.Context, title, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Warnings = append(p.Warnings, Warning{Title: title, Message: message})
	return nil
}

// LastView returns the most recent view passed to Selector.
func (p *Provider) LastView() (ports.SelectorView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Views) == 0 {
		return ports.SelectorView{}, false
	}
	return p.Views[len(p.Views)-1], true
}

// Ensure Provider implements ports.DialogProvider.
var _ ports.DialogProvider = (*Provider)(nil)
