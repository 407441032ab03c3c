// SPDX-License-Identifier: MIT
// Package termstyle decides when to colour output and wraps text in ANSI
// escapes.
package termstyle

import (
	"io"
	"os"

	"github.com/liggitt/tabwriter"
	"golang.org/x/term"

	"github.com/skaphos/fleetpull/internal/model"
)

const (
	Reset = "\x1b[0m"
	Green = "\x1b[32m"
	Brown = "\x1b[33m"
	Red   = "\x1b[31m"
)

// ForLevel returns the colour used for events of the given level.
func ForLevel(level model.Level) string {
	switch level {
	case model.LevelInfo:
		return Green
	case model.LevelWarn:
		return Brown
	case model.LevelError:
		return Red
	default:
		return ""
	}
}

// Paint wraps a line in ANSI escapes when color output is enabled.
func Paint(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	return color + value + Reset
}

// Colorize is Paint for table cells. The escapes are hidden from tabwriter
// width calculations so columns stay aligned.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// Enabled reports whether output written to w should be coloured: never when
// noColor is set or NO_COLOR is non-empty, otherwise only for a terminal.
func Enabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
