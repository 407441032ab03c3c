// SPDX-License-Identifier: MIT
// Package strutil holds small string helpers shared by the CLI.
package strutil

import "strings"

// SplitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func SplitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
