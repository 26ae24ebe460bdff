// Package firmata talks to a microcontroller running a Firmata sketch
// (StandardFirmata) over a serial port.
//
// Connect opens the port with a board profile that names the board's pins,
// waits for the board to come out of its reset, asks it for its firmware and
// returns a Board. The caller owns the Board and must Close it.
//
// Only the subset of the protocol a port-selection tool needs is handled:
// version and firmware reports, pin modes, digital and PWM writes and analog
// reporting.
package firmata
