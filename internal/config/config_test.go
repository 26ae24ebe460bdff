package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/acolita/boardlink/internal/testing/fakes/fakefs"
)

func TestDefaultConfigFor_Linux(t *testing.T) {
	cfg := defaultConfigFor("linux")

	if cfg.Flasher.Executable != "/usr/bin/avrdude" {
		t.Errorf("Flasher.Executable = %q, want %q", cfg.Flasher.Executable, "/usr/bin/avrdude")
	}
	if cfg.Flasher.ConfigFile != "/etc/avrdude.conf" {
		t.Errorf("Flasher.ConfigFile = %q, want %q", cfg.Flasher.ConfigFile, "/etc/avrdude.conf")
	}
	wantGlobs := []string{"/dev/ttyACM*", "/dev/ttyUSB*"}
	if strings.Join(cfg.Ports.Globs, ",") != strings.Join(wantGlobs, ",") {
		t.Errorf("Ports.Globs = %v, want %v", cfg.Ports.Globs, wantGlobs)
	}
	if cfg.Ports.ProbeCount != 256 {
		t.Errorf("Ports.ProbeCount = %d, want 256", cfg.Ports.ProbeCount)
	}
	if cfg.UI.RefreshLabel != "Refresh" {
		t.Errorf("UI.RefreshLabel = %q, want %q", cfg.UI.RefreshLabel, "Refresh")
	}
	if cfg.Board.Profile != "arduino" || cfg.Board.Baud != 57600 {
		t.Errorf("Board = %+v, want arduino at 57600", cfg.Board)
	}
}

func TestDefaultConfigFor_Windows(t *testing.T) {
	cfg := defaultConfigFor("windows")

	if cfg.Flasher.Executable != "avrdude" {
		t.Errorf("Flasher.Executable = %q, want %q", cfg.Flasher.Executable, "avrdude")
	}
	if cfg.Flasher.ConfigFile != "avrdude.conf" {
		t.Errorf("Flasher.ConfigFile = %q, want %q", cfg.Flasher.ConfigFile, "avrdude.conf")
	}
	if len(cfg.Ports.Globs) != 0 {
		t.Errorf("Ports.Globs = %v, want none", cfg.Ports.Globs)
	}
}

func TestDefaultConfig_FlasherProfile(t *testing.T) {
	f := DefaultConfig().Flasher

	if f.Part != "atmega328p" || f.Programmer != "arduino" || f.Baud != 115200 {
		t.Errorf("Flasher = %+v, want atmega328p/arduino/115200", f)
	}
	if f.Firmware != "StandardFirmata.hex" || f.Format != "i" || f.WorkDir != "avrdude" {
		t.Errorf("Flasher = %+v, want StandardFirmata.hex:i in avrdude", f)
	}
	if !f.Quiet || !f.NoVerify || !f.NoErase {
		t.Errorf("Flasher toggles = %+v, want all on", f)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Flasher.Part != "atmega328p" {
		t.Errorf("Flasher.Part = %q, want default", cfg.Flasher.Part)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml", fakefs.New())
	if err != nil {
		t.Fatalf("Load(missing) error: %v", err)
	}
	if cfg.Board.Profile != "arduino" {
		t.Errorf("Board.Profile = %q, want default", cfg.Board.Profile)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	fsys := fakefs.New()
	fsys.AddFile("/cfg/bad.yaml", []byte(":::invalid:::yaml{{{"), 0644)

	if _, err := Load("/cfg/bad.yaml", fsys); err == nil {
		t.Fatal("Load(invalid YAML) expected error, got nil")
	}
}

func TestLoadValidConfig(t *testing.T) {
	yaml := `
ui:
  refresh_label: Actualizar
ports:
  globs: []
  probe_count: 4
board:
  profile: my_uno
  settle_time: 2s
  layouts:
    my_uno:
      digital: [0, 1, 2, 3]
      analog: [0]
      pwm: [3]
      disabled: [0, 1]
flasher:
  part: atmega2560
  programmer: wiring
  quiet: false
logging:
  level: debug
  file: /var/log/boardlink.log
`
	fsys := fakefs.New()
	fsys.AddFile("/cfg/config.yaml", []byte(yaml), 0644)

	cfg, err := Load("/cfg/config.yaml", fsys)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.UI.RefreshLabel != "Actualizar" {
		t.Errorf("UI.RefreshLabel = %q, want %q", cfg.UI.RefreshLabel, "Actualizar")
	}
	if len(cfg.Ports.Globs) != 0 {
		t.Errorf("Ports.Globs = %v, want empty", cfg.Ports.Globs)
	}
	if cfg.Ports.ProbeCount != 4 {
		t.Errorf("Ports.ProbeCount = %d, want 4", cfg.Ports.ProbeCount)
	}
	if cfg.Board.SettleTime != 2*time.Second {
		t.Errorf("Board.SettleTime = %v, want 2s", cfg.Board.SettleTime)
	}
	layout, ok := cfg.Board.Layouts["my_uno"]
	if !ok {
		t.Fatal("Board.Layouts[my_uno] missing")
	}
	if len(layout.Digital) != 4 || len(layout.PWM) != 1 || len(layout.Disabled) != 2 {
		t.Errorf("layout = %+v", layout)
	}
	if cfg.Flasher.Part != "atmega2560" || cfg.Flasher.Programmer != "wiring" {
		t.Errorf("Flasher = %+v", cfg.Flasher)
	}
	if cfg.Flasher.Quiet {
		t.Error("Flasher.Quiet = true, want false (overridden)")
	}
	if !cfg.Flasher.NoErase {
		t.Error("Flasher.NoErase = false, want default true")
	}
	if cfg.Flasher.Baud != 115200 {
		t.Errorf("Flasher.Baud = %d, want default 115200", cfg.Flasher.Baud)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "/var/log/boardlink.log" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative probe count", func(c *Config) { c.Ports.ProbeCount = -1 }, "probe_count"},
		{"negative settle", func(c *Config) { c.Board.SettleTime = -time.Second }, "settle_time"},
		{"missing part", func(c *Config) { c.Flasher.Part = "" }, "flasher.part"},
		{"missing firmware and programmer", func(c *Config) {
			c.Flasher.Firmware = " "
			c.Flasher.Programmer = ""
		}, "flasher.firmware, flasher.programmer"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.RefreshLabel = ""
	cfg.Ports.ProbeBaud = 0
	cfg.Board.Profile = ""
	cfg.Board.Baud = 0
	cfg.Board.ReadTimeout = 0
	cfg.Flasher.Baud = -5
	cfg.Flasher.Format = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	def := DefaultConfig()
	if cfg.UI.RefreshLabel != def.UI.RefreshLabel {
		t.Errorf("UI.RefreshLabel = %q, want %q", cfg.UI.RefreshLabel, def.UI.RefreshLabel)
	}
	if cfg.Ports.ProbeBaud != def.Ports.ProbeBaud {
		t.Errorf("Ports.ProbeBaud = %d, want %d", cfg.Ports.ProbeBaud, def.Ports.ProbeBaud)
	}
	if cfg.Board.Profile != def.Board.Profile || cfg.Board.Baud != def.Board.Baud {
		t.Errorf("Board = %+v, want defaults", cfg.Board)
	}
	if cfg.Board.ReadTimeout != def.Board.ReadTimeout {
		t.Errorf("Board.ReadTimeout = %v, want %v", cfg.Board.ReadTimeout, def.Board.ReadTimeout)
	}
	if cfg.Flasher.Baud != 115200 || cfg.Flasher.Format != "i" {
		t.Errorf("Flasher = %+v, want baud 115200 format i", cfg.Flasher)
	}
}

func TestSaveAndLoad(t *testing.T) {
	fsys := fakefs.New()
	cfg := DefaultConfig()
	cfg.Flasher.Part = "atmega168"

	if err := Save(cfg, "/home/test/.config/boardlink/config.yaml", fsys); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load("/home/test/.config/boardlink/config.yaml", fsys)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Flasher.Part != "atmega168" {
		t.Errorf("Flasher.Part = %q, want %q", loaded.Flasher.Part, "atmega168")
	}
	if loaded.Board.SettleTime != cfg.Board.SettleTime {
		t.Errorf("Board.SettleTime = %v, want %v", loaded.Board.SettleTime, cfg.Board.SettleTime)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		home string
		want string
	}{
		{"xdg wins", "/xdg", "/home/ada", filepath.Join("/xdg", "boardlink", "config.yaml")},
		{"home fallback", "", "/home/ada", filepath.Join("/home/ada", ".config", "boardlink", "config.yaml")},
		{"nothing known", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fakefs.New()
			fsys.SetEnv("XDG_CONFIG_HOME", tt.xdg)
			fsys.SetHomeDir(tt.home)

			if got := DefaultConfigPath(fsys); got != tt.want {
				t.Errorf("DefaultConfigPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

// writeConfigFile replaces path atomically, so a watcher never sees it
// half written.
func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename config: %v", err)
	}
}
