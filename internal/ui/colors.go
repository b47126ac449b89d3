package ui

import "os"

// Escape sequences for styled terminal output.
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[97m"
)

// Plain disables the helper styles. It honours NO_COLOR.
var Plain = os.Getenv("NO_COLOR") != ""

func paint(style, s string) string {
	if Plain || s == "" {
		return s
	}
	return style + s + ColorReset
}

func Bold(s string) string    { return paint(ColorBold, s) }
func Dim(s string) string     { return paint(ColorDim, s) }
func Accent(s string) string  { return paint(ColorCyan, s) }
func Success(s string) string { return paint(ColorGreen, s) }
func Info(s string) string    { return paint(ColorDim+ColorYellow, s) }
func Error(s string) string   { return paint(ColorRed, s) }

// Status renders a one-word outcome, green for ok and red otherwise.
func Status(ok bool, failed string) string {
	if ok {
		return Success("ok")
	}
	return Error(failed)
}
