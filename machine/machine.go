// Package machine drives a single block.Candidate through its section and
// state transitions line by line, the one place in the module allowed to
// mutate a Candidate's Section and State — syntaxes only report what
// should happen via syntax.Detection, they never touch the candidate
// themselves.
package machine

import (
	"strings"
	"time"

	"github.com/samsaffron/streamblocks/block"
	"github.com/samsaffron/streamblocks/event"
	"github.com/samsaffron/streamblocks/internal/idgen"
	"github.com/samsaffron/streamblocks/registry"
	"github.com/samsaffron/streamblocks/streamerr"
	"github.com/samsaffron/streamblocks/syntax"
)

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithMaxBlockSize bounds the accumulated raw size of a candidate, in
// bytes. Zero (the default) means unbounded.
func WithMaxBlockSize(n int) Option {
	return func(m *Machine) { m.maxBlockSize = n }
}

// WithStrictUnknownType rejects a block whose block_type has no
// registered schema instead of falling back to permissive parsing.
func WithStrictUnknownType(strict bool) Option {
	return func(m *Machine) { m.strictUnknownType = strict }
}

// Machine is the per-stream block state machine. It is not safe for
// concurrent use: a single instance processes lines from one logical
// stream, in order.
type Machine struct {
	reg *registry.Registry
	ids *idgen.BlockIDs

	maxBlockSize      int
	strictUnknownType bool

	candidate  *block.Candidate
	lineNumber int
}

// New builds a Machine bound to reg, whose syntax it drives, using ids to
// mint block identifiers as new candidates open.
func New(reg *registry.Registry, ids *idgen.BlockIDs, opts ...Option) *Machine {
	m := &Machine{reg: reg, ids: ids}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ActiveCandidate reports the in-progress candidate, if any.
func (m *Machine) ActiveCandidate() *block.Candidate { return m.candidate }

// ProcessLine advances the machine by one complete line (no trailing
// newline) and returns the events that line produced, in order.
func (m *Machine) ProcessLine(line string) []event.Event {
	m.lineNumber++

	if m.candidate == nil {
		return m.processSearching(line)
	}
	return m.processActive(line)
}

// Flush finalizes any candidate still open at end of stream: an unclosed
// block is a rejection, never a silent drop.
func (m *Machine) Flush() []event.Event {
	if m.candidate == nil {
		return nil
	}
	c := m.candidate
	m.candidate = nil
	c.State = block.Rejected

	err := streamerr.New(streamerr.CodeUnclosedBlock, "stream ended with block still open", nil)
	return []event.Event{
		event.NewBlockError(time.Now(), c.BlockID, c.StartLine, m.lineNumber, err),
	}
}

func (m *Machine) processSearching(line string) []event.Event {
	syn := m.reg.Syntax()
	d := syn.DetectLine(line, nil)
	if !d.IsOpening {
		return []event.Event{event.NewTextContent(time.Now(), line, m.lineNumber)}
	}

	id := m.ids.Next()
	c := block.New(syn.Name(), id, m.lineNumber)
	c.InlineMetadata = d.Metadata
	c.AppendLine(line)
	m.candidate = c

	// The opening marker line itself belongs to the header section,
	// regardless of where the syntax wants subsequent lines bucketed.
	events := []event.Event{
		event.NewBlockStart(time.Now(), id, syn.Name(), m.lineNumber, d.Metadata),
		event.NewBlockHeaderDelta(time.Now(), id, line, line),
	}

	if d.SectionAdvance != "" {
		c.Section = d.SectionAdvance
	}
	c.State = sectionState(c.Section)

	return events
}

func (m *Machine) processActive(line string) []event.Event {
	c := m.candidate
	syn := m.reg.Syntax()

	d := syn.DetectLine(line, c)
	c.AppendLine(line)

	if m.maxBlockSize > 0 && c.SizeBytes > m.maxBlockSize {
		m.candidate = nil
		c.State = block.Rejected
		err := streamerr.New(streamerr.CodeSizeExceeded, "block exceeded maximum size", nil)
		return []event.Event{event.NewBlockError(time.Now(), c.BlockID, c.StartLine, m.lineNumber, err)}
	}

	switch {
	case d.IsClosing:
		m.candidate = nil
		c.State = block.ClosingDetected
		return m.finalize(c, syn)

	case d.IsMetadataBoundary:
		prev := c.Section
		if d.SectionAdvance != "" {
			c.Section = d.SectionAdvance
		}
		c.State = sectionState(c.Section)

		events := []event.Event{
			event.NewBlockMetadataDelta(time.Now(), c.BlockID, line, strings.Join(c.MetadataLines, "\n"), true),
		}
		if prev == block.MetadataSection && c.Section == block.ContentSection {
			metadata, err := syn.ParseMetadataEarly(c)
			passed := err == nil
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}
			events = append(events, event.NewBlockMetadataEnd(time.Now(), c.BlockID, metadata, passed, errMsg))
		}
		return events

	default:
		if d.SectionAdvance != "" {
			c.Section = d.SectionAdvance
			c.State = sectionState(c.Section)
		}
		return m.bucket(c, line)
	}
}

func (m *Machine) bucket(c *block.Candidate, line string) []event.Event {
	switch c.Section {
	case block.MetadataSection:
		c.MetadataLines = append(c.MetadataLines, line)
		return []event.Event{event.NewBlockMetadataDelta(time.Now(), c.BlockID, line, strings.Join(c.MetadataLines, "\n"), false)}
	case block.ContentSection:
		c.ContentLines = append(c.ContentLines, line)
		return []event.Event{event.NewBlockContentDelta(time.Now(), c.BlockID, line, strings.Join(c.ContentLines, "\n"))}
	default:
		return []event.Event{event.NewBlockHeaderDelta(time.Now(), c.BlockID, line, line)}
	}
}

func (m *Machine) finalize(c *block.Candidate, syn syntax.Syntax) []event.Event {
	// ExtractBlockType is consulted before a full parse, but a failure here
	// is ambiguous: the type tag may be genuinely absent, or the envelope
	// itself may be malformed in a way that also breaks type extraction (a
	// YAML syntax error in frontmatter, say). Try the full parse regardless,
	// so a malformed envelope is reported with its real diagnostic instead
	// of being flattened into a generic "missing metadata" rejection.
	blockType, typeOK := syn.ExtractBlockType(c)

	if typeOK && m.strictUnknownType && !m.reg.Known(blockType) {
		c.State = block.Rejected
		err := streamerr.New(streamerr.CodeUnknownType, "unknown block_type: "+blockType, nil)
		return []event.Event{event.NewBlockError(time.Now(), c.BlockID, c.StartLine, m.lineNumber, err)}
	}

	var schema syntax.Schema
	if typeOK {
		schema = m.reg.Schema(blockType)
	}
	result := syn.ParseBlock(c, schema)
	if !result.Success {
		c.State = block.Rejected
		code := streamerr.CodeParseFailed
		if result.Err != nil && strings.Contains(result.Error, "YAML") {
			code = streamerr.CodeSyntaxError
		}
		err := streamerr.New(code, result.Error, result.Err)
		return []event.Event{event.NewBlockError(time.Now(), c.BlockID, c.StartLine, m.lineNumber, err)}
	}

	if !typeOK {
		c.State = block.Rejected
		err := streamerr.New(streamerr.CodeMissingMetadata, "could not determine block_type", nil)
		return []event.Event{event.NewBlockError(time.Now(), c.BlockID, c.StartLine, m.lineNumber, err)}
	}

	extracted := block.Extracted{
		Metadata:   result.Metadata,
		Content:    result.Content,
		SyntaxName: syn.Name(),
		RawText:    c.RawText(),
		LineStart:  c.StartLine,
		LineEnd:    m.lineNumber,
		HashID:     c.ComputeHash(),
		BlockType:  blockType,
		BlockID:    c.BlockID,
	}

	passed := syn.ValidateBlock(extracted) && m.reg.Validate(blockType, extracted.Content)

	events := []event.Event{event.NewBlockContentEnd(time.Now(), c.BlockID, extracted.Content, extracted.RawText, passed, "")}

	if !passed {
		c.State = block.Rejected
		err := streamerr.New(streamerr.CodeValidationFailed, "block failed validation", nil)
		events = append(events, event.NewBlockError(time.Now(), c.BlockID, c.StartLine, m.lineNumber, err))
		return events
	}

	c.State = block.Completed
	events = append(events, event.NewBlockEnd(time.Now(), c.BlockID, c.StartLine, m.lineNumber, extracted))
	return events
}

func sectionState(s block.Section) block.State {
	switch s {
	case block.MetadataSection:
		return block.AccumulatingMetadata
	case block.ContentSection:
		return block.AccumulatingContent
	default:
		return block.HeaderDetected
	}
}
