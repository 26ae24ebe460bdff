package ports

import (
	"io"
	"time"
)

// SerialPort is an open serial line.
type SerialPort interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds Read. A Read that times out returns 0, nil.
	SetReadTimeout(t time.Duration) error
}

// PortDetails describes a port reported by the OS enumerator.
type PortDetails struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// SerialPorts abstracts access to the machine's serial ports.
type SerialPorts interface {
	// Open opens the named port at the given baud rate, 8N1.
	Open(name string, baud int) (SerialPort, error)

	// Details lists the ports the OS knows about.
	Details() ([]PortDetails, error)
}
