package portscan

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/acolita/boardlink/internal/ports"
)

// Details lists the ports the OS reports, sorted by name.
func (e *Enumerator) Details() ([]ports.PortDetails, error) {
	list, err := e.serials.Details()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// RenderTable writes details as a table.
func RenderTable(w io.Writer, details []ports.PortDetails) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Port", "USB", "VID", "PID", "Serial", "Product"})
	for _, d := range details {
		usb := "no"
		if d.IsUSB {
			usb = "yes"
		}
		t.AppendRow(table.Row{d.Name, usb, d.VID, d.PID, d.SerialNumber, d.Product})
	}
	if len(details) == 0 {
		t.AppendFooter(table.Row{"no ports found"})
	}
	t.Render()
}
