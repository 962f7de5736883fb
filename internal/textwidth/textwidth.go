// Package textwidth truncates a line to a maximum terminal display width
// without splitting a multi-byte rune or a wide (e.g. CJK) character in
// half, the way the teacher repo sizes terminal output in
// internal/ui/streaming/terminal.go.
package textwidth

import "github.com/mattn/go-runewidth"

// Truncate returns line cut to at most maxWidth display columns. If line
// already fits, it is returned unchanged. maxWidth <= 0 disables
// truncation.
func Truncate(line string, maxWidth int) string {
	if maxWidth <= 0 {
		return line
	}
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}
	return runewidth.Truncate(line, maxWidth, "")
}
