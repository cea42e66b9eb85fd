package utils

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// DisableColor turns styling off globally. Output that is not a terminal is
// never styled.
func DisableColor(disabled bool) {
	color.NoColor = disabled || !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func paint(text string, attrs ...color.Attribute) string {
	return color.New(attrs...).Sprint(text)
}

func Cyan(text string) string        { return paint(text, color.FgCyan) }
func Green(text string) string       { return paint(text, color.FgGreen) }
func Yellow(text string) string      { return paint(text, color.FgYellow) }
func Red(text string) string         { return paint(text, color.FgRed) }
func Blue(text string) string        { return paint(text, color.FgBlue) }
func Magenta(text string) string     { return paint(text, color.FgMagenta) }
func BrightWhite(text string) string { return paint(text, color.FgHiWhite) }
func Bold(text string) string        { return paint(text, color.Bold) }
func Dim(text string) string         { return paint(text, color.Faint) }
