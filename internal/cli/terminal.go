package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// colorProfile returns Ascii when colour is disabled by flag or NO_COLOR,
// otherwise the profile termenv detects.
func colorProfile(disabled bool) termenv.Profile {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
