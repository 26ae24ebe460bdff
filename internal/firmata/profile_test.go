package firmata

import (
	"errors"
	"testing"
)

func TestLookupProfile_Builtin(t *testing.T) {
	p, err := LookupProfile("arduino", nil)
	if err != nil {
		t.Fatalf("LookupProfile(arduino) error: %v", err)
	}
	if len(p.Digital) != 14 || len(p.Analog) != 6 {
		t.Errorf("arduino has %d digital, %d analog pins, want 14, 6", len(p.Digital), len(p.Analog))
	}
	if !contains(p.PWM, 3) || contains(p.PWM, 4) {
		t.Errorf("arduino PWM = %v", p.PWM)
	}
	if !contains(p.Disabled, 0) || !contains(p.Disabled, 1) {
		t.Errorf("arduino Disabled = %v, want RX/TX", p.Disabled)
	}
}

func TestLookupProfile_CustomShadowsBuiltin(t *testing.T) {
	custom := map[string]Profile{
		"arduino": {Digital: []int{2, 3}},
	}
	p, err := LookupProfile("arduino", custom)
	if err != nil {
		t.Fatalf("LookupProfile() error: %v", err)
	}
	if len(p.Digital) != 2 {
		t.Errorf("Digital = %v, want custom layout", p.Digital)
	}
	if p.Name != "arduino" {
		t.Errorf("Name = %q, want %q", p.Name, "arduino")
	}
}

func TestLookupProfile_Unknown(t *testing.T) {
	_, err := LookupProfile("teensy", nil)
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("LookupProfile(teensy) error = %v, want ErrInvalidProfile", err)
	}
}

func TestProfileNames(t *testing.T) {
	names := ProfileNames()
	want := []string{"arduino", "arduino_due", "arduino_mega", "arduino_nano"}
	if len(names) != len(want) {
		t.Fatalf("ProfileNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ProfileNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"minimal", Profile{Name: "x", Digital: []int{0}}, false},
		{"no digital", Profile{Name: "x"}, true},
		{"negative pin", Profile{Name: "x", Digital: []int{-1}}, true},
		{"pin too large", Profile{Name: "x", Digital: []int{128}}, true},
		{"duplicate digital", Profile{Name: "x", Digital: []int{1, 1}}, true},
		{"analog out of range", Profile{Name: "x", Digital: []int{0}, Analog: []int{16}}, true},
		{"duplicate analog", Profile{Name: "x", Digital: []int{0}, Analog: []int{2, 2}}, true},
		{"pwm not digital", Profile{Name: "x", Digital: []int{0, 1}, PWM: []int{3}}, true},
		{"disabled not digital", Profile{Name: "x", Digital: []int{0, 1}, Disabled: []int{7}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Validate() error = %v, want ErrInvalidProfile", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestBuiltinProfilesAreValid(t *testing.T) {
	for _, name := range ProfileNames() {
		if _, err := LookupProfile(name, nil); err != nil {
			t.Errorf("LookupProfile(%q) error: %v", name, err)
		}
	}
}
