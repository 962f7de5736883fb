package mdstream

import (
	"strings"
)

// partialState tracks what's currently drawn on screen for a markdown block
// that hasn't completed yet, so the next redraw knows what to erase.
type partialState struct {
	safeMarkdown string // markdown rendered so far, up to the last safe point
	safeRendered string // its glamour output, as last written
	lineCount    int    // terminal rows safeRendered occupies
	outputLen    int    // bytes already written, in flowing (no-cursor-control) mode
}

// currentBlockContent reassembles the text accumulated for the block still
// in flight: any whole lines buffered since it began, plus whatever partial
// line the renderer has received without a newline yet.
func (sr *StreamRenderer) currentBlockContent() string {
	var content strings.Builder
	for _, line := range sr.pendingLines {
		content.WriteString(line)
	}
	if sr.lineBuf.Len() > 0 {
		content.WriteString(sr.lineBuf.String())
	}
	return content.String()
}

// renderPartialBlock redraws the safe prefix of a block's content ahead of
// its completion. Requires termCtrl: in flowing (no-altscreen) output there's
// no way to erase a previous partial render, so partial rendering is a
// no-op there rather than appending a duplicate each time.
func (sr *StreamRenderer) renderPartialBlock() error {
	if sr.termCtrl == nil {
		return nil
	}

	content := sr.currentBlockContent()
	if len(content) == 0 {
		return nil
	}

	safePoint := sr.findSafePoint(content)
	safeContent := content[:safePoint]

	if len(safeContent) == 0 || safeContent == sr.partialState.safeMarkdown {
		return nil
	}

	if sr.partialState.lineCount > 0 {
		if err := sr.termCtrl.ClearLines(sr.partialState.lineCount); err != nil {
			return err
		}
	}

	rendered, err := sr.renderPartial(safeContent)
	if err != nil {
		return err
	}

	if _, err := sr.output.Write([]byte(rendered)); err != nil {
		return err
	}

	sr.partialState.safeMarkdown = safeContent
	sr.partialState.safeRendered = rendered
	sr.partialState.lineCount = sr.termCtrl.CountLines(rendered)
	return nil
}

// renderPartial renders a safe prefix through glamour directly; findSafePoint
// already guaranteed it contains no dangling inline syntax glamour would
// otherwise choke on or misrender.
func (sr *StreamRenderer) renderPartial(content string) (string, error) {
	rendered, err := sr.tr.Render(content)
	if err != nil {
		return "", err
	}

	// trailing newlines are dropped since the next delta re-renders in place
	rendered = strings.TrimRight(rendered, "\n")

	return rendered, nil
}

// findSafePoint returns the byte offset up to which content has no
// unclosed inline markdown span (code, bold, italic, strikethrough,
// links), scanning forward and tracking each span's open/close state.
// Content past an unclosed span is held back until a later delta closes it.
func (sr *StreamRenderer) findSafePoint(content string) int {
	n := len(content)
	if n == 0 {
		return 0
	}

	safePoint := n

	i := 0
	for i < n {
		// Check for escape sequences
		if content[i] == '\\' && i+1 < n {
			i += 2
			continue
		}

		// Check for code spans (backticks) - they have special rules
		if content[i] == '`' {
			// Count consecutive backticks
			start := i
			backtickCount := 0
			for i < n && content[i] == '`' {
				backtickCount++
				i++
			}

			// Look for closing backticks
			closePattern := strings.Repeat("`", backtickCount)
			closePos := strings.Index(content[i:], closePattern)
			if closePos == -1 {
				// Unclosed code span - safe point is before the backticks
				if start < safePoint {
					safePoint = start
				}
			} else {
				// Skip past the closing backticks
				i += closePos + backtickCount
			}
			continue
		}

		// Check for ** or __ (bold)
		if (content[i] == '*' || content[i] == '_') && i+1 < n && content[i+1] == content[i] {
			marker := string([]byte{content[i], content[i]})
			start := i
			i += 2

			// Look for closing marker
			closePos := strings.Index(content[i:], marker)
			if closePos == -1 {
				// Unclosed bold - safe point is before the marker
				if start < safePoint {
					safePoint = start
				}
			} else {
				// Skip past the closing marker
				i += closePos + 2
			}
			continue
		}

		// Check for * or _ (italic) - single marker
		if content[i] == '*' || content[i] == '_' {
			marker := string(content[i])
			start := i
			i++

			// Look for closing marker (but not **)
			closePos := -1
			searchPos := i
			for searchPos < n {
				pos := strings.Index(content[searchPos:], marker)
				if pos == -1 {
					break
				}
				actualPos := searchPos + pos
				// Make sure it's not ** or __
				if actualPos+1 >= n || content[actualPos+1] != content[actualPos] {
					// Also make sure the previous char isn't the same marker
					if actualPos == searchPos || content[actualPos-1] != content[actualPos] {
						closePos = actualPos
						break
					}
				}
				searchPos = actualPos + 1
			}

			if closePos == -1 {
				// Unclosed italic - safe point is before the marker
				if start < safePoint {
					safePoint = start
				}
			} else {
				i = closePos + 1
			}
			continue
		}

		// Check for ~~ (strikethrough)
		if content[i] == '~' && i+1 < n && content[i+1] == '~' {
			start := i
			i += 2

			closePos := strings.Index(content[i:], "~~")
			if closePos == -1 {
				if start < safePoint {
					safePoint = start
				}
			} else {
				i += closePos + 2
			}
			continue
		}

		// Check for [ (link start)
		if content[i] == '[' {
			start := i
			i++

			// Look for ]( or ][ to confirm it's a link
			depth := 1
			foundClose := false
			for i < n && depth > 0 {
				if content[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if content[i] == '[' {
					depth++
				} else if content[i] == ']' {
					depth--
					if depth == 0 {
						// Check if followed by ( or [
						if i+1 < n && (content[i+1] == '(' || content[i+1] == '[') {
							// It's a link, find the closing ) or ]
							opener := content[i+1]
							closer := byte(')')
							if opener == '[' {
								closer = ']'
							}
							i += 2
							parenDepth := 1
							for i < n && parenDepth > 0 {
								if content[i] == '\\' && i+1 < n {
									i += 2
									continue
								}
								if content[i] == opener {
									parenDepth++
								} else if content[i] == closer {
									parenDepth--
								}
								i++
							}
							if parenDepth == 0 {
								foundClose = true
							}
						} else {
							// Just text in brackets, continue
							foundClose = true
							i++
						}
					}
				}
				if depth > 0 {
					i++
				}
			}

			if !foundClose {
				if start < safePoint {
					safePoint = start
				}
			}
			continue
		}

		i++
	}

	for safePoint > 0 && (content[safePoint-1] == ' ' || content[safePoint-1] == '\t') {
		if safePoint > 1 {
			safePoint--
		} else {
			break
		}
	}

	return safePoint
}

// clearPartialState erases whatever partial render is on screen and resets
// the tracked state, ahead of the block's final, complete render.
func (sr *StreamRenderer) clearPartialState() error {
	if sr.partialState.lineCount > 0 && sr.termCtrl != nil {
		if err := sr.termCtrl.ClearLines(sr.partialState.lineCount); err != nil {
			return err
		}
	}

	sr.partialState = partialState{}
	return nil
}
