// Package realserial provides the SerialPorts port on top of go.bug.st/serial.
package realserial

import (
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/acolita/boardlink/internal/ports"
)

// Ports implements ports.SerialPorts with the OS serial driver.
type Ports struct{}

// New returns a new real serial port provider.
func New() *Ports {
	return &Ports{}
}

// Open opens the named port at the given baud rate, 8N1.
func (p *Ports) Open(name string, baud int) (ports.SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return port, nil
}

// Details lists the ports the OS enumerator reports, with USB identifiers
// when available.
func (p *Ports) Details() ([]ports.PortDetails, error) {
	list, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating ports: %w", err)
	}

	details := make([]ports.PortDetails, 0, len(list))
	for _, d := range list {
		if d == nil {
			continue
		}
		details = append(details, ports.PortDetails{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return details, nil
}

// Ensure Ports implements ports.SerialPorts.
var _ ports.SerialPorts = (*Ports)(nil)
