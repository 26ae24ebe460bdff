package firmata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/acolita/boardlink/internal/logging"
	"github.com/acolita/boardlink/internal/ports"
)

// maxDrainReads bounds the reads after the firmware query, so a board that
// streams reports cannot hold Connect forever.
const maxDrainReads = 64

// Version is a major.minor pair.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Firmware is what the board reported about itself. Zero values mean the
// board did not answer.
type Firmware struct {
	Protocol Version
	Name     string
	Version  Version
}

// Pin is the host-side view of a digital pin.
type Pin struct {
	Number   int
	Mode     PinMode
	Value    int
	PWM      bool
	Disabled bool
}

// Options configures Connect.
type Options struct {
	Baud        int
	SettleTime  time.Duration
	ReadTimeout time.Duration
	Clock       ports.Clock
	Logger      *slog.Logger
}

// Board is a live connection to a Firmata board.
type Board struct {
	name     string
	port     ports.SerialPort
	profile  Profile
	pins     map[int]*Pin
	analog   map[int]int
	firmware Firmware
	parser   parser
	readBuf  []byte
	logger   *slog.Logger
}

// Connect opens name with the given profile and returns the board.
// Errors wrap ErrInvalidPort or ErrInvalidProfile.
func Connect(ctx context.Context, serials ports.SerialPorts, name string, profile Profile, opts Options) (*Board, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no port selected", ErrInvalidPort)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("port", name), slog.String("board", profile.Name))

	port, err := serials.Open(name, opts.Baud)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPort, err)
	}

	b := newBoard(name, port, profile, logger)

	if opts.ReadTimeout > 0 {
		if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("%w: set read timeout: %w", ErrInvalidPort, err)
		}
	}

	// Opening the port resets the board; the bootloader swallows anything
	// sent before the sketch starts.
	if opts.SettleTime > 0 && opts.Clock != nil {
		select {
		case <-opts.Clock.After(opts.SettleTime):
		case <-ctx.Done():
			port.Close()
			return nil, ctx.Err()
		}
	}

	if err := b.handshake(ctx); err != nil {
		port.Close()
		return nil, err
	}

	logger.Debug("board connected",
		slog.String("firmware", b.firmware.Name),
		slog.String("version", b.firmware.Version.String()),
	)
	return b, nil
}

func newBoard(name string, port ports.SerialPort, profile Profile, logger *slog.Logger) *Board {
	b := &Board{
		name:    name,
		port:    port,
		profile: profile,
		pins:    make(map[int]*Pin, len(profile.Digital)),
		analog:  make(map[int]int, len(profile.Analog)),
		readBuf: make([]byte, 256),
		logger:  logger,
	}
	for _, n := range profile.Digital {
		b.pins[n] = &Pin{
			Number:   n,
			Mode:     ModeOutput,
			PWM:      contains(profile.PWM, n),
			Disabled: contains(profile.Disabled, n),
		}
	}
	for _, ch := range profile.Analog {
		b.analog[ch] = 0
	}
	return b
}

// handshake asks for the firmware and reads whatever the board has sent
// since it started.
func (b *Board) handshake(ctx context.Context) error {
	if err := b.write(startSysex, reportFirmware, endSysex); err != nil {
		return fmt.Errorf("%w: query firmware: %w", ErrInvalidPort, err)
	}

	for i := 0; i < maxDrainReads; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := b.Iterate()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPort, err)
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}

// Name is the serial port the board is on.
func (b *Board) Name() string { return b.name }

// Profile is the layout the board was opened with.
func (b *Board) Profile() Profile { return b.profile }

// Firmware is what the board reported during the handshake or later.
func (b *Board) Firmware() Firmware { return b.firmware }

// Pin returns a copy of the pin state.
func (b *Board) Pin(n int) (Pin, error) {
	pin, ok := b.pins[n]
	if !ok {
		return Pin{}, fmt.Errorf("%w: %d", ErrUnknownPin, n)
	}
	return *pin, nil
}

// AnalogValue is the last reported reading of an analog channel, 0..1023.
func (b *Board) AnalogValue(ch int) (int, error) {
	v, ok := b.analog[ch]
	if !ok {
		return 0, fmt.Errorf("%w: analog %d", ErrUnknownPin, ch)
	}
	return v, nil
}

// Iterate performs one read and applies every complete message in it. It
// returns the number of bytes read; 0 means the read timed out.
func (b *Board) Iterate() (int, error) {
	n, err := b.port.Read(b.readBuf)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", b.name, err)
	}
	if n > 0 {
		b.logger.Debug("serial rx", slog.String("bytes", logging.HexDump(b.readBuf[:n], 32)))
		b.parser.feed(b.readBuf[:n], b.dispatch)
	}
	return n, nil
}

func (b *Board) dispatch(msg message) {
	switch {
	case msg.sysex && msg.command == reportFirmware:
		if len(msg.data) >= 2 {
			b.firmware.Version = Version{Major: int(msg.data[0]), Minor: int(msg.data[1])}
			b.firmware.Name = decodeString(msg.data[2:])
		}
	case msg.sysex && msg.command == stringData:
		b.logger.Info("board message", slog.String("text", decodeString(msg.data)))
	case msg.sysex:
		b.logger.Debug("unhandled sysex", slog.Int("command", int(msg.command)))
	case msg.command == reportVersion:
		b.firmware.Protocol = Version{Major: int(msg.data[0]), Minor: int(msg.data[1])}
	case msg.command == digitalMessage:
		mask := value14(msg.data[0], msg.data[1])
		for bit := 0; bit < 8; bit++ {
			pin, ok := b.pins[int(msg.channel)*8+bit]
			if !ok || pin.Mode != ModeInput {
				continue
			}
			pin.Value = (mask >> bit) & 1
		}
	case msg.command == analogMessage:
		if _, ok := b.analog[int(msg.channel)]; ok {
			b.analog[int(msg.channel)] = value14(msg.data[0], msg.data[1])
		}
	}
}

// SetPinMode changes a digital pin's mode. PWM needs a PWM-capable pin.
func (b *Board) SetPinMode(n int, mode PinMode) error {
	pin, err := b.usablePin(n)
	if err != nil {
		return err
	}
	if mode == ModePWM && !pin.PWM {
		return fmt.Errorf("%w: pin %d has no pwm", ErrPinMode, n)
	}
	if err := b.write(setPinMode, byte(n), byte(mode)); err != nil {
		return err
	}
	pin.Mode = mode
	if mode == ModeInput {
		return b.write(reportDigital|byte(n/8), 1)
	}
	return nil
}

// DigitalWrite drives an output pin. The whole 8-pin port is sent, as the
// protocol requires.
func (b *Board) DigitalWrite(n int, high bool) error {
	pin, err := b.usablePin(n)
	if err != nil {
		return err
	}
	if pin.Mode != ModeOutput {
		return fmt.Errorf("%w: pin %d is %s, not output", ErrPinMode, n, pin.Mode)
	}
	pin.Value = 0
	if high {
		pin.Value = 1
	}

	portNum := n / 8
	mask := 0
	for bit := 0; bit < 8; bit++ {
		if p, ok := b.pins[portNum*8+bit]; ok && p.Mode == ModeOutput && p.Value == 1 {
			mask |= 1 << bit
		}
	}
	lsb, msb := split14(mask)
	return b.write(digitalMessage|byte(portNum), lsb, msb)
}

// AnalogWrite sets the duty cycle, 0..255, of a pin in PWM mode.
func (b *Board) AnalogWrite(n int, duty int) error {
	pin, err := b.usablePin(n)
	if err != nil {
		return err
	}
	if pin.Mode != ModePWM {
		return fmt.Errorf("%w: pin %d is %s, not pwm", ErrPinMode, n, pin.Mode)
	}
	if n > 15 {
		return fmt.Errorf("%w: pin %d beyond analog message range", ErrPinMode, n)
	}
	if duty < 0 || duty > 255 {
		return fmt.Errorf("duty %d out of range 0..255", duty)
	}
	lsb, msb := split14(duty)
	if err := b.write(analogMessage|byte(n), lsb, msb); err != nil {
		return err
	}
	pin.Value = duty
	return nil
}

// ReportAnalog turns reporting of an analog channel on or off.
func (b *Board) ReportAnalog(ch int, on bool) error {
	if _, ok := b.analog[ch]; !ok {
		return fmt.Errorf("%w: analog %d", ErrUnknownPin, ch)
	}
	var flag byte
	if on {
		flag = 1
	}
	return b.write(reportAnalog|byte(ch), flag)
}

// Close stops PWM outputs and closes the port.
func (b *Board) Close() error {
	numbers := make([]int, 0, len(b.pins))
	for n, pin := range b.pins {
		if pin.Mode == ModePWM && pin.Value != 0 {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		if err := b.AnalogWrite(n, 0); err != nil {
			b.logger.Warn("failed to stop pwm", slog.Int("pin", n), slog.String("error", err.Error()))
		}
	}
	return b.port.Close()
}

func (b *Board) usablePin(n int) (*Pin, error) {
	pin, ok := b.pins[n]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPin, n)
	}
	if pin.Disabled {
		return nil, fmt.Errorf("%w: %d", ErrPinDisabled, n)
	}
	return pin, nil
}

func (b *Board) write(data ...byte) error {
	b.logger.Debug("serial tx", slog.String("bytes", logging.HexDump(data, 32)))
	if _, err := b.port.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", b.name, err)
	}
	return nil
}
