// Package portscan builds the list of serial ports offered to the user.
package portscan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acolita/boardlink/internal/config"
	"github.com/acolita/boardlink/internal/ports"
)

// Placeholder stands in for the port list when nothing was found, so the
// selector always has an entry before the sentinel.
const Placeholder = ""

// Enumerator scans the machine for serial ports.
type Enumerator struct {
	fs       ports.FileSystem
	serials  ports.SerialPorts
	cfg      config.PortsConfig
	sentinel string
	goos     string
	logger   *slog.Logger
}

// New returns an enumerator. goos selects the probe naming scheme.
func New(fs ports.FileSystem, serials ports.SerialPorts, cfg config.PortsConfig, sentinel, goos string, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enumerator{
		fs:       fs,
		serials:  serials,
		cfg:      cfg,
		sentinel: sentinel,
		goos:     goos,
		logger:   logger,
	}
}

// ProbeName is the device name for numeric index i.
func ProbeName(goos string, i int) string {
	if goos == "windows" {
		return fmt.Sprintf("COM%d", i+1)
	}
	return fmt.Sprintf("/dev/ttyS%d", i)
}

// Scan returns the found ports followed by the sentinel. When no port was
// found the list is [Placeholder, sentinel]. It never returns an empty list;
// the only error is ctx's.
func (e *Enumerator) Scan(ctx context.Context) ([]string, error) {
	var found []string
	seen := make(map[string]bool)
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		found = append(found, name)
	}

	for _, pattern := range e.cfg.Globs {
		matches, err := e.fs.Glob(pattern)
		if err != nil {
			e.logger.Debug("glob failed", slog.String("pattern", pattern), slog.String("error", err.Error()))
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	for i := 0; i < e.cfg.ProbeCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := ProbeName(e.goos, i)
		if seen[name] {
			continue
		}
		if e.probe(name) {
			add(name)
		}
	}

	if len(found) == 0 {
		found = []string{Placeholder}
	}
	list := append(found, e.sentinel)

	e.logger.Debug("ports scanned", slog.Int("count", len(list)-1), slog.Any("ports", list))
	return list, nil
}

// probe reports whether name opens. The port is closed straight away.
func (e *Enumerator) probe(name string) bool {
	port, err := e.serials.Open(name, e.cfg.ProbeBaud)
	if err != nil {
		e.logger.Debug("probe failed", slog.String("port", name), slog.String("error", err.Error()))
		return false
	}
	if err := port.Close(); err != nil {
		e.logger.Debug("probe close failed", slog.String("port", name), slog.String("error", err.Error()))
	}
	return true
}
