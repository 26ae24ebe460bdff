package avrdude

import (
	"strings"
	"testing"

	"github.com/acolita/boardlink/internal/config"
)

func linuxProfile() Profile {
	return Profile{
		Executable: "/usr/bin/avrdude",
		ConfigFile: "/etc/avrdude.conf",
		Part:       "atmega328p",
		Programmer: "arduino",
		Baud:       115200,
		Firmware:   "StandardFirmata.hex",
		Format:     "i",
		WorkDir:    "avrdude",
		Quiet:      true,
		NoVerify:   true,
		NoErase:    true,
	}
}

func TestBuildArgs_Default(t *testing.T) {
	got := strings.Join(BuildArgs(linuxProfile(), "/dev/ttyACM0"), " ")
	want := "-q -V -C /etc/avrdude.conf -p atmega328p -c arduino -P /dev/ttyACM0 -b 115200 -D -U flash:w:StandardFirmata.hex:i"
	if got != want {
		t.Errorf("BuildArgs() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestBuildArgs_Toggles(t *testing.T) {
	p := linuxProfile()
	p.Quiet = false
	p.NoVerify = false
	p.NoErase = false
	p.ConfigFile = ""
	p.Baud = 0
	p.Format = ""

	got := strings.Join(BuildArgs(p, "COM4"), " ")
	want := "-p atmega328p -c arduino -P COM4 -U flash:w:StandardFirmata.hex"
	if got != want {
		t.Errorf("BuildArgs() = %q, want %q", got, want)
	}
}

func TestBuildArgs_PortWithSpacesStaysOneArgument(t *testing.T) {
	args := BuildArgs(linuxProfile(), "/dev/serial/by-id/usb-Arduino Uno")
	for i, a := range args {
		if a == "-P" {
			if args[i+1] != "/dev/serial/by-id/usb-Arduino Uno" {
				t.Errorf("port argument = %q", args[i+1])
			}
			return
		}
	}
	t.Fatal("-P not found")
}

func TestProfileFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Flasher
	p := ProfileFromConfig(cfg)

	if p.Executable != cfg.Executable || p.Part != cfg.Part || p.Firmware != cfg.Firmware {
		t.Errorf("ProfileFromConfig() = %+v, want copy of %+v", p, cfg)
	}
	if p.WorkDir != "avrdude" || !p.NoErase {
		t.Errorf("ProfileFromConfig() = %+v", p)
	}
}
