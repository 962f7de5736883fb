package mdstream

// StreamRendererOption configures a StreamRenderer.
type StreamRendererOption func(*StreamRenderer)

// WithPartialRendering renders the safe prefix of the markdown block still
// being written as more of it arrives, redrawing in place each time more
// of the block closes off, rather than waiting for the block to complete
// before producing any terminal output at all. Redrawing needs terminal
// control; without it partial rendering does nothing.
func WithPartialRendering() StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.partialEnabled = true
	}
}

// WithTerminalWidth sets the width used to count how many rows a partial
// render occupies, so terminalController.ClearLines erases the right
// span before the next redraw.
func WithTerminalWidth(width int) StreamRendererOption {
	return func(sr *StreamRenderer) {
		sr.termWidth = width
	}
}
