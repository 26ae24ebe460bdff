package selectdlg

import (
	"context"
	"log/slog"

	"github.com/acolita/boardlink/internal/avrdude"
	"github.com/acolita/boardlink/internal/ports"
)

// Run drives the dialog until a board is accepted, the user exits, or ctx
// is done. All dialog state is touched from this goroutine only; avrdude and
// the progress views run beside it and report back over channels.
func (d *Dialog) Run(ctx context.Context) error {
	for d.status == StatusPending {
		d.drainChanges()

		if err := ctx.Err(); err != nil {
			d.Cancel()
			return err
		}

		var err error
		if d.view == ViewProgramming {
			err = d.awaitFlash(ctx)
		} else {
			err = d.interact(ctx)
		}
		if err != nil {
			d.Cancel()
			return err
		}
	}
	return nil
}

// drainChanges applies the newest reloaded config, if any.
func (d *Dialog) drainChanges() {
	for {
		select {
		case cfg, ok := <-d.deps.Changes:
			if !ok {
				d.deps.Changes = nil
				return
			}
			d.UpdateConfig(cfg)
		default:
			return
		}
	}
}

// interact shows the selector once and carries out the user's choice.
func (d *Dialog) interact(ctx context.Context) error {
	choice, err := d.deps.UI.Selector(ctx, d.selectorView())
	if err != nil {
		return err
	}
	d.logger.Debug("selector choice", slog.Int("index", choice.Index), slog.String("action", string(choice.Action)))

	switch choice.Action {
	case ports.ActionExit:
		d.Cancel()
		return nil
	case ports.ActionSelect:
		return d.Select(ctx, choice.Index)
	}

	// The refresh entry only ever rescans.
	if choice.Index == len(d.ports)-1 {
		return d.Select(ctx, choice.Index)
	}

	if err := d.Select(ctx, choice.Index); err != nil {
		return err
	}
	if !d.controlsEnabled {
		d.logger.Debug("action ignored while controls are disabled", slog.String("action", string(choice.Action)))
		return nil
	}

	switch choice.Action {
	case ports.ActionConnect:
		return d.Connect(ctx)
	case ports.ActionProgram:
		return d.Program(ctx)
	default:
		d.logger.Debug("unknown action", slog.String("action", string(choice.Action)))
		return nil
	}
}

// awaitFlash shows the programming view until avrdude exits, then finishes.
func (d *Dialog) awaitFlash(ctx context.Context) error {
	ui := d.deps.UI
	done := make(chan struct{})
	progressDone := make(chan error, 1)
	go func() {
		progressDone <- ui.Progress(ctx, titleProgramming, done)
	}()

	res, ok := d.waitPending(ctx)
	close(done)
	if err := <-progressDone; err != nil && ctx.Err() == nil {
		d.logger.Debug("progress view ended early", slog.String("error", err.Error()))
	}
	if !ok {
		return ctx.Err()
	}
	return d.Finish(ctx, res)
}

func (d *Dialog) waitPending(ctx context.Context) (avrdude.Result, bool) {
	select {
	case res := <-d.pending:
		return res, true
	case <-ctx.Done():
		return avrdude.Result{}, false
	}
}
