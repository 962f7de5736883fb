// Package framer turns arbitrarily-sized input chunks into complete lines,
// buffering any trailing partial line across chunk boundaries the same way
// a line-oriented streaming reader would. It is the only place in the
// module that understands chunk framing; everything downstream operates
// on whole lines.
package framer

import (
	"bytes"

	"github.com/samsaffron/streamblocks/internal/textwidth"
)

// Framer accumulates chunk bytes and yields complete lines as they become
// available. Not safe for concurrent use.
type Framer struct {
	buf bytes.Buffer

	maxLineLength int
	linesSeen     int
	bytesSeen     int
}

// Option configures a Framer at construction time.
type Option func(*Framer)

// WithMaxLineLength truncates any line wider than n display columns (a
// wide rune counts as two) before it is handed downstream. Zero (the
// default) disables truncation.
func WithMaxLineLength(n int) Option {
	return func(f *Framer) { f.maxLineLength = n }
}

// New builds an empty Framer.
func New(opts ...Option) *Framer {
	f := &Framer{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Feed appends a chunk of input and returns every complete line it
// produced, in order, stripped of its trailing newline. A trailing
// partial line (no newline yet) stays buffered until a later Feed or
// Flush completes it.
func (f *Framer) Feed(chunk []byte) []string {
	f.bytesSeen += len(chunk)
	f.buf.Write(chunk)

	var lines []string
	for {
		line, err := f.buf.ReadString('\n')
		if err != nil {
			// No newline yet: put the partial content back and wait for
			// more input.
			f.buf.WriteString(line)
			break
		}
		lines = append(lines, f.finishLine(line[:len(line)-1]))
	}
	return lines
}

// Flush returns the final buffered partial line, if any, as a complete
// line — called once at end of stream, since input need not end with a
// trailing newline.
func (f *Framer) Flush() []string {
	if f.buf.Len() == 0 {
		return nil
	}
	remaining := f.buf.String()
	f.buf.Reset()
	return []string{f.finishLine(remaining)}
}

func (f *Framer) finishLine(line string) string {
	f.linesSeen++
	if f.maxLineLength > 0 {
		line = textwidth.Truncate(line, f.maxLineLength)
	}
	return line
}

// LinesSeen returns the count of complete lines produced so far.
func (f *Framer) LinesSeen() int { return f.linesSeen }

// BytesSeen returns the count of raw input bytes fed so far.
func (f *Framer) BytesSeen() int { return f.bytesSeen }
