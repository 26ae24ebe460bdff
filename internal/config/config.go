// Package config handles configuration parsing for boardlink.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/acolita/boardlink/internal/ports"
)

// DefaultConfigPath returns the default config file path:
// $XDG_CONFIG_HOME/boardlink/config.yaml or ~/.config/boardlink/config.yaml.
// It is empty when neither is known.
func DefaultConfigPath(fsys ports.FileSystem) string {
	dir := fsys.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := fsys.UserHomeDir()
		if err != nil || home == "" {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "boardlink", "config.yaml")
}

// Config represents the top-level configuration.
type Config struct {
	UI      UIConfig      `yaml:"ui"`
	Ports   PortsConfig   `yaml:"ports"`
	Board   BoardConfig   `yaml:"board"`
	Flasher FlasherConfig `yaml:"flasher"`
	Logging LoggingConfig `yaml:"logging"`
}

// UIConfig defines how the dialog is presented.
type UIConfig struct {
	Title        string `yaml:"title"`
	RefreshLabel string `yaml:"refresh_label"` // the sentinel entry at the end of the port list
	Accessible   bool   `yaml:"accessible"`    // line-based prompts instead of full-screen forms
}

// PortsConfig defines how candidate serial ports are discovered.
type PortsConfig struct {
	Globs      []string `yaml:"globs"`       // device paths collected before probing
	ProbeCount int      `yaml:"probe_count"` // numeric indices 0..probe_count-1 are probed
	ProbeBaud  int      `yaml:"probe_baud"`
}

// BoardConfig defines the Firmata connection.
type BoardConfig struct {
	Profile     string                  `yaml:"profile"` // built-in layout name or a key of Layouts
	Baud        int                     `yaml:"baud"`
	SettleTime  time.Duration           `yaml:"settle_time"` // wait after open while the board resets
	ReadTimeout time.Duration           `yaml:"read_timeout"`
	Layouts     map[string]LayoutConfig `yaml:"layouts"`
}

// LayoutConfig describes a board's pins.
type LayoutConfig struct {
	Digital  []int `yaml:"digital"`
	Analog   []int `yaml:"analog"`
	PWM      []int `yaml:"pwm"`
	Disabled []int `yaml:"disabled"`
}

// FlasherConfig defines the avrdude invocation.
type FlasherConfig struct {
	Executable string `yaml:"executable"`
	ConfigFile string `yaml:"config_file"` // passed with -C
	Part       string `yaml:"part"`        // -p
	Programmer string `yaml:"programmer"`  // -c
	Baud       int    `yaml:"baud"`        // -b
	Firmware   string `yaml:"firmware"`    // image written with -U flash:w:<firmware>:<format>
	Format     string `yaml:"format"`
	WorkDir    string `yaml:"work_dir"`    // avrdude runs here; relative paths resolve against it
	Quiet      bool   `yaml:"quiet"`       // -q
	NoVerify   bool   `yaml:"no_verify"`   // -V
	NoErase    bool   `yaml:"no_erase"`    // -D
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // "debug", "info", "warn", "error"
	File       string `yaml:"file"`  // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the default configuration for the running OS.
func DefaultConfig() *Config {
	return defaultConfigFor(runtime.GOOS)
}

func defaultConfigFor(goos string) *Config {
	cfg := &Config{
		UI: UIConfig{
			Title:        "Select the board:",
			RefreshLabel: "Refresh",
		},
		Ports: PortsConfig{
			ProbeCount: 256,
			ProbeBaud:  9600,
		},
		Board: BoardConfig{
			Profile:     "arduino",
			Baud:        57600,
			SettleTime:  5 * time.Second,
			ReadTimeout: 100 * time.Millisecond,
		},
		Flasher: FlasherConfig{
			Executable: "avrdude",
			ConfigFile: "avrdude.conf",
			Part:       "atmega328p",
			Programmer: "arduino",
			Baud:       115200,
			Firmware:   "StandardFirmata.hex",
			Format:     "i",
			WorkDir:    "avrdude",
			Quiet:      true,
			NoVerify:   true,
			NoErase:    true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}

	if goos != "windows" {
		// avrdude 5.10 or newer from the system packages
		cfg.Ports.Globs = []string{"/dev/ttyACM*", "/dev/ttyUSB*"}
		cfg.Flasher.Executable = "/usr/bin/avrdude"
		cfg.Flasher.ConfigFile = "/etc/avrdude.conf"
	}

	return cfg
}

// Load loads configuration from a YAML file.
// An optional FileSystem can be passed for testing; if omitted, the real OS is used.
func Load(path string, fsys ...ports.FileSystem) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	var data []byte
	var err error
	if len(fsys) > 0 && fsys[0] != nil {
		data, err = fsys[0].ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No file yet: -write-config creates one
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Validate fills zero values with defaults and rejects settings that cannot work.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.UI.RefreshLabel == "" {
		c.UI.RefreshLabel = def.UI.RefreshLabel
	}
	if c.Ports.ProbeCount < 0 {
		return fmt.Errorf("ports.probe_count must not be negative, got %d", c.Ports.ProbeCount)
	}
	if c.Ports.ProbeBaud <= 0 {
		c.Ports.ProbeBaud = def.Ports.ProbeBaud
	}
	if c.Board.Profile == "" {
		c.Board.Profile = def.Board.Profile
	}
	if c.Board.Baud <= 0 {
		c.Board.Baud = def.Board.Baud
	}
	if c.Board.SettleTime < 0 {
		return fmt.Errorf("board.settle_time must not be negative, got %v", c.Board.SettleTime)
	}
	if c.Board.ReadTimeout <= 0 {
		c.Board.ReadTimeout = def.Board.ReadTimeout
	}
	if c.Flasher.Baud <= 0 {
		c.Flasher.Baud = def.Flasher.Baud
	}
	if c.Flasher.Format == "" {
		c.Flasher.Format = def.Flasher.Format
	}

	var missing []string
	for name, value := range map[string]string{
		"flasher.executable": c.Flasher.Executable,
		"flasher.part":       c.Flasher.Part,
		"flasher.programmer": c.Flasher.Programmer,
		"flasher.firmware":   c.Flasher.Firmware,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// Save writes the configuration to a YAML file.
// An optional FileSystem can be passed for testing; if omitted, the real OS is used.
func Save(cfg *Config, path string, fsys ...ports.FileSystem) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if len(fsys) > 0 && fsys[0] != nil {
		if err := fsys[0].MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		return fsys[0].WriteFile(path, data, 0644)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
