package avrdude

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/acolita/boardlink/internal/logging"
	"github.com/acolita/boardlink/internal/ports"
)

// Result is one finished flash attempt.
type Result struct {
	Port     string
	Outcome  Outcome
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Flasher runs avrdude with a fixed profile.
type Flasher struct {
	runner  ports.CommandRunner
	clock   ports.Clock
	profile Profile
	logger  *slog.Logger
}

// NewFlasher returns a flasher that runs commands through runner.
func NewFlasher(runner ports.CommandRunner, clock ports.Clock, profile Profile, logger *slog.Logger) *Flasher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flasher{
		runner:  runner,
		clock:   clock,
		profile: profile,
		logger:  logger,
	}
}

// Profile returns the flasher's profile.
func (f *Flasher) Profile() Profile {
	return f.profile
}

// Command is the invocation Flash would run for port.
func (f *Flasher) Command(port string) ports.Command {
	return ports.Command{
		Path: f.profile.Executable,
		Args: BuildArgs(f.profile, port),
		Dir:  f.profile.WorkDir,
	}
}

// Flash writes the firmware through port and blocks until avrdude exits.
// There is no timeout; ctx is the only way to stop it.
func (f *Flasher) Flash(ctx context.Context, port string) Result {
	cmd := f.Command(port)
	logger := f.logger.With(slog.String("port", port))
	logger.Debug("running avrdude",
		slog.String("path", cmd.Path),
		slog.Any("args", cmd.Args),
		slog.String("dir", cmd.Dir),
	)

	start := f.clock.Now()
	res, err := f.runner.Run(ctx, cmd)
	result := Result{
		Port:     port,
		Stderr:   string(res.Stderr),
		ExitCode: res.ExitCode,
		Duration: f.clock.Now().Sub(start),
	}

	if err != nil {
		result.Outcome = Outcome{
			Cause:   CauseToolUnavailable,
			Message: fmt.Sprintf("The programming tool could not be started:\n%v", err),
		}
		logger.Warn("avrdude did not run", slog.String("error", err.Error()))
		return result
	}

	result.Outcome = Classify(result.Stderr)
	logger.Debug("avrdude finished",
		slog.Int("exit_code", res.ExitCode),
		slog.Bool("success", result.Outcome.Success),
		slog.String("cause", string(result.Outcome.Cause)),
		slog.String("stderr", logging.Truncate(result.Stderr, 512)),
	)
	return result
}
