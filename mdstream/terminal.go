package mdstream

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// terminalController erases and re-counts the in-progress rendering of a
// block that's still streaming, so StreamRenderer can redraw it in place
// instead of appending a second copy every time new content arrives.
type terminalController struct {
	output io.Writer
	width  int
}

func newTerminalController(output io.Writer, width int) *terminalController {
	return &terminalController{
		output: output,
		width:  width,
	}
}

// ClearLines erases the last n terminal lines the previous partial render
// occupied, positioning the cursor to overwrite them with the next render
// of the same block.
func (tc *terminalController) ClearLines(n int) error {
	if n <= 0 {
		return nil
	}

	seq := ansi.CursorUp(n)
	seq += ansi.CursorHorizontalAbsolute(1)
	seq += ansi.EraseDisplay(0)

	_, err := tc.output.Write([]byte(seq))
	return err
}

// CountLines reports how many terminal rows rendered occupies, accounting
// for ANSI escapes (zero display width) and wrapping at tc.width. Needed
// before every re-render so ClearLines erases exactly what was drawn, not
// more or less.
func (tc *terminalController) CountLines(rendered string) int {
	if len(rendered) == 0 {
		return 0
	}

	lines := strings.Split(rendered, "\n")
	totalLines := 0

	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			continue
		}

		lineWidth := ansi.StringWidth(line)

		switch {
		case lineWidth == 0:
			totalLines++
		case tc.width > 0:
			wrappedLines := (lineWidth + tc.width - 1) / tc.width
			if wrappedLines == 0 {
				wrappedLines = 1
			}
			totalLines += wrappedLines
		default:
			totalLines++
		}
	}

	return totalLines
}
