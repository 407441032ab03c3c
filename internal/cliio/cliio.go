// SPDX-License-Identifier: MIT
// Package cliio holds the small terminal writers and readers shared by the
// fleetpull commands.
package cliio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"

	"github.com/skaphos/fleetpull/internal/model"
	"github.com/skaphos/fleetpull/internal/termstyle"
)

// PromptYesNo writes prompt and reads a yes/no response from input.
func PromptYesNo(out io.Writer, in io.Reader, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	choice := strings.ToLower(strings.TrimSpace(line))
	return choice == "y" || choice == "yes", nil
}

// WriteTable renders an aligned table. Cells may carry termstyle.Colorize
// escapes.
func WriteTable(out io.Writer, noHeaders bool, headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.StripEscape)
	if !noHeaders {
		if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteEvent prints one progress event as a single line, coloured by level.
func WriteEvent(out io.Writer, ev model.Event, color bool) error {
	_, err := fmt.Fprintln(out, termstyle.Paint(color, ev.Text, termstyle.ForLevel(ev.Level)))
	return err
}
