// Package hlipgloss reads the terminal overrides from the environment.
package hlipgloss

import (
	"os"
	"strconv"

	"github.com/charmbracelet/colorprofile"
)

var forcetty bool

func init() {
	forcetty, _ = strconv.ParseBool(os.Getenv("FORCE_TTY"))
}

// ForceTTY reports whether FORCE_TTY asks for colors on a non terminal
// output, as in CI logs.
func ForceTTY() bool {
	return forcetty
}

// Profile returns the color profile to use for an output that was detected
// as p.
func Profile(p colorprofile.Profile) colorprofile.Profile {
	if forcetty && p == colorprofile.NoTTY {
		return colorprofile.ANSI256
	}

	return p
}
