// Package selectdlg is the port selection dialog: it lists serial ports and
// either connects a Firmata board or flashes firmware onto it.
package selectdlg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/acolita/boardlink/internal/avrdude"
	"github.com/acolita/boardlink/internal/config"
	"github.com/acolita/boardlink/internal/firmata"
	"github.com/acolita/boardlink/internal/portscan"
	"github.com/acolita/boardlink/internal/ports"
)

// View is what the dialog currently shows.
type View string

const (
	ViewSelector    View = "selector"
	ViewProgramming View = "programming"
)

// Status is how the dialog ended, if it has.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var (
	// ErrBoardHeld is returned by Connect once a board was accepted.
	ErrBoardHeld = errors.New("board already connected")

	// ErrBusy is returned while a flash is running.
	ErrBusy = errors.New("programming in progress")

	// ErrNoSuchEntry is returned by Select for an index outside the list.
	ErrNoSuchEntry = errors.New("no such port entry")

	// ErrNoPort is returned by Connect and Program while the controls are
	// disabled or the refresh entry is selected.
	ErrNoPort = errors.New("no port to act on")
)

// Deps are the collaborators of a Dialog.
type Deps struct {
	UI      ports.DialogProvider
	FS      ports.FileSystem
	Serials ports.SerialPorts
	Runner  ports.CommandRunner
	Clock   ports.Clock
	GOOS    string
	Logger  *slog.Logger

	// Changes delivers reloaded configurations. Optional.
	Changes <-chan *config.Config

	// Reconfigure applies the settings the dialog does not own, such as
	// logging, when a reloaded config is taken over. Optional.
	Reconfigure func(*config.Config)
}

// Dialog holds the selector state. It is not safe for concurrent use; Run
// owns it for the lifetime of the loop.
type Dialog struct {
	deps    Deps
	cfg     *config.Config
	logger  *slog.Logger
	scanner *portscan.Enumerator
	flasher *avrdude.Flasher

	ports           []string
	selected        int
	view            View
	controlsEnabled bool
	board           *firmata.Board
	status          Status
	pending         chan avrdude.Result
}

// New builds the dialog and runs the first enumeration.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*Dialog, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dialog{
		deps:   deps,
		logger: logger,
		view:   ViewSelector,
		status: StatusPending,
	}
	d.applyConfig(cfg)

	if err := d.Refresh(ctx, true); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dialog) applyConfig(cfg *config.Config) {
	d.cfg = cfg
	d.scanner = portscan.New(d.deps.FS, d.deps.Serials, cfg.Ports, cfg.UI.RefreshLabel, d.deps.GOOS, d.logger)
	d.flasher = avrdude.NewFlasher(d.deps.Runner, d.deps.Clock, avrdude.ProfileFromConfig(cfg.Flasher), d.logger)
}

// Ports is the current list; the last entry is the refresh label.
func (d *Dialog) Ports() []string {
	return append([]string(nil), d.ports...)
}

// Selected is the index of the selected entry.
func (d *Dialog) Selected() int { return d.selected }

// SelectedPort is the selected entry's text.
func (d *Dialog) SelectedPort() string { return d.ports[d.selected] }

// View returns the current view.
func (d *Dialog) View() View { return d.view }

// ControlsEnabled reports whether connect and program are offered.
func (d *Dialog) ControlsEnabled() bool { return d.controlsEnabled }

// Status returns how the dialog ended.
func (d *Dialog) Status() Status { return d.status }

// Board returns the accepted board, or nil. The caller owns it.
func (d *Dialog) Board() *firmata.Board { return d.board }

// Config returns the configuration in effect.
func (d *Dialog) Config() *config.Config { return d.cfg }

func (d *Dialog) onSentinel() bool {
	return d.selected == len(d.ports)-1
}

// actionable reports whether connect and program may run now.
func (d *Dialog) actionable() error {
	if !d.controlsEnabled || d.onSentinel() {
		return ErrNoPort
	}
	return nil
}

// Refresh rescans the ports when forced or when the refresh entry is
// selected; otherwise it does nothing. Afterwards the first entry is
// selected and the controls follow whether it names a port.
func (d *Dialog) Refresh(ctx context.Context, force bool) error {
	if !force && !d.onSentinel() {
		return nil
	}

	d.controlsEnabled = false
	list, err := d.scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan ports: %w", err)
	}

	d.ports = list
	d.selected = 0
	d.controlsEnabled = d.ports[0] != portscan.Placeholder
	return nil
}

// Select moves the selection. Selecting the refresh entry rescans instead.
func (d *Dialog) Select(ctx context.Context, index int) error {
	if index < 0 || index >= len(d.ports) {
		return fmt.Errorf("%w: %d", ErrNoSuchEntry, index)
	}
	d.selected = index
	return d.Refresh(ctx, false)
}

// Connect opens a Firmata board on the selected port. A failed attempt is
// shown to the user and followed by a rescan, since the board may have been
// unplugged. The returned error is either cancellation or a state error
// (ErrBoardHeld, ErrBusy, ErrNoPort).
func (d *Dialog) Connect(ctx context.Context) error {
	if d.board != nil {
		return ErrBoardHeld
	}
	if d.view == ViewProgramming {
		return ErrBusy
	}
	if err := d.actionable(); err != nil {
		return err
	}

	port := d.SelectedPort()
	board, err := d.open(ctx, port)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		d.logger.Warn("connect failed", slog.String("port", port), slog.String("error", err.Error()))
		if werr := d.deps.UI.Warn(ctx, titleWarning, err.Error()); werr != nil {
			d.logger.Debug("warning not shown", slog.String("error", werr.Error()))
		}
		return d.Refresh(ctx, true)
	}

	d.board = board
	d.status = StatusAccepted
	d.logger.Info("board connected",
		slog.String("port", port),
		slog.String("board", board.Profile().Name),
		slog.String("firmware", board.Firmware().Name),
	)
	return nil
}

// open resolves the configured profile and connects while a progress view
// is shown.
func (d *Dialog) open(ctx context.Context, port string) (*firmata.Board, error) {
	profile, err := d.profile()
	if err != nil {
		return nil, err
	}
	opts := firmata.Options{
		Baud:        d.cfg.Board.Baud,
		SettleTime:  d.cfg.Board.SettleTime,
		ReadTimeout: d.cfg.Board.ReadTimeout,
		Clock:       d.deps.Clock,
		Logger:      d.logger,
	}

	type connected struct {
		board *firmata.Board
		err   error
	}
	result := make(chan connected, 1)
	done := make(chan struct{})
	serials := d.deps.Serials
	go func() {
		defer close(done)
		board, err := firmata.Connect(ctx, serials, port, profile, opts)
		result <- connected{board, err}
	}()

	if err := d.deps.UI.Progress(ctx, fmt.Sprintf(connectingFmt, port), done); err != nil {
		d.logger.Debug("progress view ended early", slog.String("error", err.Error()))
	}
	c := <-result
	return c.board, c.err
}

// profile is the configured board layout.
func (d *Dialog) profile() (firmata.Profile, error) {
	custom := make(map[string]firmata.Profile, len(d.cfg.Board.Layouts))
	for name, l := range d.cfg.Board.Layouts {
		custom[name] = firmata.Profile{
			Name:     name,
			Digital:  l.Digital,
			Analog:   l.Analog,
			PWM:      l.PWM,
			Disabled: l.Disabled,
		}
	}
	return firmata.LookupProfile(d.cfg.Board.Profile, custom)
}

// Program flashes the firmware through the selected port. It returns as soon
// as avrdude is started; the result arrives on Pending and must be handed to
// Finish.
func (d *Dialog) Program(ctx context.Context) error {
	if d.view == ViewProgramming {
		return ErrBusy
	}
	if err := d.actionable(); err != nil {
		return err
	}

	port := d.SelectedPort()
	d.controlsEnabled = false
	d.view = ViewProgramming

	pending := make(chan avrdude.Result, 1)
	d.pending = pending
	flasher := d.flasher
	d.logger.Info("programming board", slog.String("port", port), slog.String("firmware", flasher.Profile().Firmware))
	go func() {
		pending <- flasher.Flash(ctx, port)
	}()
	return nil
}

// Pending delivers the running flash's result. It is nil when no flash runs.
func (d *Dialog) Pending() <-chan avrdude.Result {
	return d.pending
}

// Finish reports a flash result and returns to the selector with the
// controls enabled, whatever the outcome.
func (d *Dialog) Finish(ctx context.Context, res avrdude.Result) error {
	d.pending = nil

	logger := d.logger.With(slog.String("port", res.Port), slog.Duration("duration", res.Duration))
	if res.Outcome.Success {
		logger.Info("board programmed")
	} else {
		logger.Warn("programming failed",
			slog.String("cause", string(res.Outcome.Cause)),
			slog.Int("exit_code", res.ExitCode),
		)
		if err := d.deps.UI.Warn(ctx, titleFlashFailed, res.Outcome.Message); err != nil {
			d.logger.Debug("warning not shown", slog.String("error", err.Error()))
		}
	}

	err := d.Refresh(ctx, true)
	d.controlsEnabled = true
	d.view = ViewSelector
	return err
}

// Cancel ends the dialog without a board.
func (d *Dialog) Cancel() {
	if d.status == StatusPending {
		d.status = StatusRejected
	}
}

// UpdateConfig switches to cfg. A flash already running keeps its settings.
func (d *Dialog) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	oldLabel := d.cfg.UI.RefreshLabel
	if d.deps.Reconfigure != nil {
		d.deps.Reconfigure(cfg)
		if d.deps.Logger == nil {
			d.logger = slog.Default()
		}
	}
	d.applyConfig(cfg)

	if n := len(d.ports); n > 0 && d.ports[n-1] == oldLabel {
		d.ports[n-1] = cfg.UI.RefreshLabel
	}
	d.logger.Info("configuration reloaded",
		slog.String("board", cfg.Board.Profile),
		slog.String("firmware", cfg.Flasher.Firmware),
	)
}

func (d *Dialog) selectorView() ports.SelectorView {
	return ports.SelectorView{
		Title:           d.cfg.UI.Title,
		Ports:           d.Ports(),
		Selected:        d.selected,
		ControlsEnabled: d.controlsEnabled,
	}
}
