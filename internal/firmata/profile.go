package firmata

import (
	"fmt"
	"sort"
)

// maxPin is the largest pin number a Firmata SET_PIN_MODE byte can carry.
const maxPin = 127

// Profile names the pins of a board model.
type Profile struct {
	Name     string
	Digital  []int
	Analog   []int
	PWM      []int // subset of Digital
	Disabled []int // subset of Digital; never touched
}

func pinRange(from, to int) []int {
	pins := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		pins = append(pins, i)
	}
	return pins
}

var builtinProfiles = map[string]Profile{
	"arduino": {
		Name:     "arduino",
		Digital:  pinRange(0, 13),
		Analog:   pinRange(0, 5),
		PWM:      []int{3, 5, 6, 9, 10, 11},
		Disabled: []int{0, 1},
	},
	"arduino_nano": {
		Name:     "arduino_nano",
		Digital:  pinRange(0, 13),
		Analog:   pinRange(0, 7),
		PWM:      []int{3, 5, 6, 9, 10, 11},
		Disabled: []int{0, 1},
	},
	"arduino_mega": {
		Name:     "arduino_mega",
		Digital:  pinRange(0, 53),
		Analog:   pinRange(0, 15),
		PWM:      pinRange(2, 13),
		Disabled: []int{0, 1},
	},
	"arduino_due": {
		Name:     "arduino_due",
		Digital:  pinRange(0, 53),
		Analog:   pinRange(0, 11),
		PWM:      pinRange(2, 13),
		Disabled: []int{0, 1},
	},
}

// ProfileNames lists the built-in profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupProfile returns the named profile. Custom profiles shadow built-in
// ones. The result is validated.
func LookupProfile(name string, custom map[string]Profile) (Profile, error) {
	p, ok := custom[name]
	if !ok {
		p, ok = builtinProfiles[name]
	}
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown board %q", ErrInvalidProfile, name)
	}
	if p.Name == "" {
		p.Name = name
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that the pin lists are usable together.
func (p Profile) Validate() error {
	if len(p.Digital) == 0 {
		return fmt.Errorf("%w: %s has no digital pins", ErrInvalidProfile, p.Name)
	}

	digital := make(map[int]bool, len(p.Digital))
	for _, pin := range p.Digital {
		if pin < 0 || pin > maxPin {
			return fmt.Errorf("%w: %s digital pin %d out of range", ErrInvalidProfile, p.Name, pin)
		}
		if digital[pin] {
			return fmt.Errorf("%w: %s digital pin %d listed twice", ErrInvalidProfile, p.Name, pin)
		}
		digital[pin] = true
	}

	analog := make(map[int]bool, len(p.Analog))
	for _, ch := range p.Analog {
		if ch < 0 || ch > 15 {
			return fmt.Errorf("%w: %s analog pin %d out of range", ErrInvalidProfile, p.Name, ch)
		}
		if analog[ch] {
			return fmt.Errorf("%w: %s analog pin %d listed twice", ErrInvalidProfile, p.Name, ch)
		}
		analog[ch] = true
	}

	for _, pin := range p.PWM {
		if !digital[pin] {
			return fmt.Errorf("%w: %s pwm pin %d is not a digital pin", ErrInvalidProfile, p.Name, pin)
		}
	}
	for _, pin := range p.Disabled {
		if !digital[pin] {
			return fmt.Errorf("%w: %s disabled pin %d is not a digital pin", ErrInvalidProfile, p.Name, pin)
		}
	}

	return nil
}

func contains(pins []int, pin int) bool {
	for _, p := range pins {
		if p == pin {
			return true
		}
	}
	return false
}
