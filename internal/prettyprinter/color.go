package prettyprinter

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorKind   = 36
	colorAttr   = 33
	colorDetail = 32
)

// ColorSupported reports whether f is a terminal that accepts ANSI colours.
func ColorSupported(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func colorize(code int, s string) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", code, s)
}
