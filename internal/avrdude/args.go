// Package avrdude flashes firmware through the avrdude command-line tool and
// classifies its diagnostics.
package avrdude

import (
	"fmt"
	"strconv"

	"github.com/acolita/boardlink/internal/config"
)

// Profile is everything avrdude needs besides the port.
type Profile struct {
	Executable string
	ConfigFile string
	Part       string
	Programmer string
	Baud       int
	Firmware   string
	Format     string
	WorkDir    string
	Quiet      bool
	NoVerify   bool
	NoErase    bool
}

// ProfileFromConfig copies the flasher settings.
func ProfileFromConfig(cfg config.FlasherConfig) Profile {
	return Profile{
		Executable: cfg.Executable,
		ConfigFile: cfg.ConfigFile,
		Part:       cfg.Part,
		Programmer: cfg.Programmer,
		Baud:       cfg.Baud,
		Firmware:   cfg.Firmware,
		Format:     cfg.Format,
		WorkDir:    cfg.WorkDir,
		Quiet:      cfg.Quiet,
		NoVerify:   cfg.NoVerify,
		NoErase:    cfg.NoErase,
	}
}

// BuildArgs returns the avrdude arguments that write the firmware through port.
func BuildArgs(p Profile, port string) []string {
	var args []string

	if p.Quiet {
		args = append(args, "-q")
	}
	if p.NoVerify {
		args = append(args, "-V")
	}
	if p.ConfigFile != "" {
		args = append(args, "-C", p.ConfigFile)
	}

	args = append(args,
		"-p", p.Part,
		"-c", p.Programmer,
		"-P", port,
	)

	if p.Baud > 0 {
		args = append(args, "-b", strconv.Itoa(p.Baud))
	}
	if p.NoErase {
		args = append(args, "-D")
	}

	args = append(args, "-U", flashOp(p))
	return args
}

// flashOp is the -U memory operation, e.g. flash:w:StandardFirmata.hex:i.
func flashOp(p Profile) string {
	if p.Format == "" {
		return fmt.Sprintf("flash:w:%s", p.Firmware)
	}
	return fmt.Sprintf("flash:w:%s:%s", p.Firmware, p.Format)
}
