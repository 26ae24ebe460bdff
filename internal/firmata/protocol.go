package firmata

// Command bytes.
const (
	digitalMessage byte = 0x90 // low nibble is the port
	analogMessage  byte = 0xE0 // low nibble is the pin
	reportAnalog   byte = 0xC0
	reportDigital  byte = 0xD0
	startSysex     byte = 0xF0
	setPinMode     byte = 0xF4
	endSysex       byte = 0xF7
	reportVersion  byte = 0xF9
)

// Sysex commands.
const (
	stringData     byte = 0x71
	reportFirmware byte = 0x79
)

// PinMode is a Firmata pin mode.
type PinMode byte

const (
	ModeInput  PinMode = 0x00
	ModeOutput PinMode = 0x01
	ModeAnalog PinMode = 0x02
	ModePWM    PinMode = 0x03
	ModeServo  PinMode = 0x04
)

func (m PinMode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	case ModeAnalog:
		return "analog"
	case ModePWM:
		return "pwm"
	case ModeServo:
		return "servo"
	default:
		return "unknown"
	}
}

// message is one decoded Firmata message. For sysex messages command is the
// sysex command and data the payload between it and END_SYSEX.
type message struct {
	command byte
	channel byte
	sysex   bool
	data    []byte
}

// parser splits a byte stream into messages. It keeps partial messages
// between feeds, so reads may cut the stream anywhere.
type parser struct {
	inSysex bool
	current byte
	need    int
	buf     []byte
}

func (p *parser) feed(data []byte, handle func(message)) {
	for _, b := range data {
		switch {
		case p.inSysex:
			if b == endSysex {
				p.inSysex = false
				if len(p.buf) > 0 {
					handle(message{command: p.buf[0], sysex: true, data: p.buf[1:]})
				}
				p.buf = nil
				continue
			}
			p.buf = append(p.buf, b)

		case b&0x80 != 0:
			p.need = 0
			p.buf = nil
			if b == startSysex {
				p.inSysex = true
				continue
			}
			cmd := b
			if b < startSysex {
				cmd = b & 0xF0
			}
			switch cmd {
			case digitalMessage, analogMessage, reportVersion:
				p.current = b
				p.need = 2
			}

		case p.need > 0:
			p.buf = append(p.buf, b)
			if len(p.buf) == p.need {
				msg := message{command: p.current, data: p.buf}
				if p.current < startSysex {
					msg.command = p.current & 0xF0
					msg.channel = p.current & 0x0F
				}
				p.need = 0
				p.buf = nil
				handle(msg)
			}
		}
	}
}

// value14 joins two 7-bit data bytes, least significant first.
func value14(lsb, msb byte) int {
	return int(lsb&0x7F) | int(msb&0x7F)<<7
}

// split14 is the inverse of value14.
func split14(v int) (lsb, msb byte) {
	return byte(v & 0x7F), byte((v >> 7) & 0x7F)
}

// decodeString decodes sysex text sent as 7-bit byte pairs.
func decodeString(data []byte) string {
	out := make([]byte, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		out = append(out, byte(value14(data[i], data[i+1])))
	}
	return string(out)
}
