package firmata

import "errors"

var (
	// ErrInvalidPort means the port name is empty, the port cannot be opened,
	// or the board stopped answering on it.
	ErrInvalidPort = errors.New("invalid serial port")

	// ErrInvalidProfile means the board profile is unknown or malformed.
	ErrInvalidProfile = errors.New("invalid board profile")

	// ErrUnknownPin means the pin is not part of the board profile.
	ErrUnknownPin = errors.New("pin not on board")

	// ErrPinDisabled means the pin is reserved, e.g. the serial RX/TX pins.
	ErrPinDisabled = errors.New("pin disabled")

	// ErrPinMode means the operation does not fit the pin's current mode.
	ErrPinMode = errors.New("wrong pin mode")
)
