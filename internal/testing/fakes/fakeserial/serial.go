// Package fakeserial provides in-memory serial ports for testing.
package fakeserial

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/acolita/boardlink/internal/ports"
)

// Ports is a fake ports.SerialPorts. Only names registered with Add open.
type Ports struct {
	mu    sync.Mutex
	ports map[string]*Port

	// Attempts records every name passed to Open, in order.
	Attempts []string
	// DetailsList and DetailsErr are returned by Details.
	DetailsList []ports.PortDetails
	DetailsErr  error
}

// New returns a fake with no openable ports.
func New() *Ports {
	return &Ports{ports: make(map[string]*Port)}
}

// Add registers an openable port and returns it for scripting.
func (p *Ports) Add(name string) *Port {
	p.mu.Lock()
	defer p.mu.Unlock()

	port := &Port{Name: name}
	p.ports[name] = port
	return port
}

// Remove unplugs a port; later opens fail.
func (p *Ports) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ports, name)
}

// Open returns the registered port or a not-exist error.
func (p *Ports) Open(name string, baud int) (ports.SerialPort, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Attempts = append(p.Attempts, name)
	port, ok := p.ports[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	if port.OpenErr != nil {
		return nil, port.OpenErr
	}

	port.mu.Lock()
	port.closed = false
	port.Baud = baud
	port.Opens++
	port.mu.Unlock()
	return port, nil
}

// Details returns DetailsList and DetailsErr.
func (p *Ports) Details() ([]ports.PortDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DetailsList, p.DetailsErr
}

// Port is a scripted serial line.
type Port struct {
	mu sync.Mutex

	Name string
	// OpenErr makes Open fail for this port even though it exists.
	OpenErr error
	// WriteErr makes every Write fail.
	WriteErr error

	Baud        int
	Opens       int
	Closes      int
	ReadTimeout time.Duration

	closed  bool
	rx      [][]byte
	written bytes.Buffer
}

// Queue adds a chunk that the next Read returns. A Read with nothing queued
// behaves like a read timeout and returns 0, nil.
func (p *Port) Queue(chunk ...byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx = append(p.rx, append([]byte(nil), chunk...))
}

// Written returns everything written since the port was created.
func (p *Port) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written.Bytes()...)
}

// Closed reports whether the port is currently closed.
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p.rx) == 0 {
		return 0, nil
	}
	n := copy(b, p.rx[0])
	if n < len(p.rx[0]) {
		p.rx[0] = p.rx[0][n:]
	} else {
		p.rx = p.rx[1:]
	}
	return n, nil
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.WriteErr != nil {
		return 0, p.WriteErr
	}
	return p.written.Write(b)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("port already closed")
	}
	p.closed = true
	p.Closes++
	return nil
}

// SetReadTimeout records the timeout.
func (p *Port) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ReadTimeout = t
	return nil
}

// Ensure the fakes implement the ports.
var (
	_ ports.SerialPorts = (*Ports)(nil)
	_ ports.SerialPort  = (*Port)(nil)
)
