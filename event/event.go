// Package event defines the tagged union of every event the processor can
// emit. Every variant is immutable once constructed, carries a millisecond
// timestamp and a unique id, and (for block-scoped variants) a BlockID that
// is stable across every event belonging to the same candidate.
package event

import (
	"time"

	"github.com/samsaffron/streamblocks/block"
	"github.com/samsaffron/streamblocks/internal/idgen"
	"github.com/samsaffron/streamblocks/streamerr"
)

// Kind discriminates the Event union.
type Kind string

const (
	KindStreamStarted      Kind = "stream_started"
	KindStreamFinished     Kind = "stream_finished"
	KindStreamError        Kind = "stream_error"
	KindTextContent        Kind = "text_content"
	KindTextDelta          Kind = "text_delta"
	KindBlockStart         Kind = "block_start"
	KindBlockHeaderDelta   Kind = "block_header_delta"
	KindBlockMetadataDelta Kind = "block_metadata_delta"
	KindBlockContentDelta  Kind = "block_content_delta"
	KindBlockMetadataEnd   Kind = "block_metadata_end"
	KindBlockContentEnd    Kind = "block_content_end"
	KindBlockEnd           Kind = "block_end"
	KindBlockError         Kind = "block_error"
	KindOriginalEvent      Kind = "original_event"
)

// Event is implemented by every concrete event variant.
type Event interface {
	Kind() Kind
	ID() string
	TimestampMS() int64
}

// Base is embedded by every event variant to supply the id/timestamp
// bookkeeping uniformly. Its fields are exported (under different names
// than the ID()/TimestampMS() accessors) so they serialize normally when
// an event is marshaled to JSON, rather than vanishing the way unexported
// embedded fields would.
type Base struct {
	EventID   string `json:"id"`
	EventTime int64  `json:"timestamp_ms"`
}

func newBase(now time.Time) Base {
	return Base{EventID: idgen.EventID(), EventTime: now.UnixMilli()}
}

func (b Base) ID() string         { return b.EventID }
func (b Base) TimestampMS() int64 { return b.EventTime }

// BlockScoped is embedded by every event that belongs to a specific
// candidate's lifecycle.
type BlockScoped struct {
	BlockID string
}

// StreamStarted opens the event stream for one processor invocation.
type StreamStarted struct {
	Base
}

func NewStreamStarted(now time.Time) StreamStarted {
	return StreamStarted{Base: newBase(now)}
}
func (StreamStarted) Kind() Kind { return KindStreamStarted }

// StreamFinished closes the event stream after a successful run.
type StreamFinished struct {
	Base
}

func NewStreamFinished(now time.Time) StreamFinished {
	return StreamFinished{Base: newBase(now)}
}
func (StreamFinished) Kind() Kind { return KindStreamFinished }

// StreamError reports a failure at the stream level. Block-level failures
// are always BlockError, never this. Nothing in this module emits a
// StreamError: driving a Processor a second time (another ProcessStream
// call, or Finalize after Finalize) produces none.
type StreamError struct {
	Base
	Err error
}

func NewStreamError(now time.Time, err error) StreamError {
	return StreamError{Base: newBase(now), Err: err}
}
func (StreamError) Kind() Kind { return KindStreamError }

// TextContent is a full line of pass-through text outside any block.
type TextContent struct {
	Base
	Line       string
	LineNumber int
}

func NewTextContent(now time.Time, line string, lineNumber int) TextContent {
	return TextContent{Base: newBase(now), Line: line, LineNumber: lineNumber}
}
func (TextContent) Kind() Kind { return KindTextContent }

// TextDelta is a raw chunk pass-through, emitted once per input chunk that
// yielded text, mirroring the source chunk boundary rather than line
// boundaries.
type TextDelta struct {
	Base
	Delta       string
	InsideBlock bool
	Section     block.Section // valid only when InsideBlock
	Metadata    map[string]any
}

func NewTextDelta(now time.Time, delta string, insideBlock bool, section block.Section, metadata map[string]any) TextDelta {
	return TextDelta{Base: newBase(now), Delta: delta, InsideBlock: insideBlock, Section: section, Metadata: metadata}
}
func (TextDelta) Kind() Kind { return KindTextDelta }

// BlockStart announces a new candidate was opened.
type BlockStart struct {
	Base
	BlockScoped
	StartLine      int
	SyntaxName     string
	InlineMetadata map[string]any
}

func NewBlockStart(now time.Time, blockID, syntaxName string, startLine int, inlineMetadata map[string]any) BlockStart {
	return BlockStart{
		Base:           newBase(now),
		BlockScoped:    BlockScoped{BlockID: blockID},
		StartLine:      startLine,
		SyntaxName:     syntaxName,
		InlineMetadata: inlineMetadata,
	}
}
func (BlockStart) Kind() Kind { return KindBlockStart }

// BlockHeaderDelta is a raw line accepted while the candidate is still in
// its header section, which for the built-in syntaxes holds only the
// opening marker line.
type BlockHeaderDelta struct {
	Base
	BlockScoped
	Delta       string
	Accumulated string
}

func NewBlockHeaderDelta(now time.Time, blockID, delta, accumulated string) BlockHeaderDelta {
	return BlockHeaderDelta{Base: newBase(now), BlockScoped: BlockScoped{BlockID: blockID}, Delta: delta, Accumulated: accumulated}
}
func (BlockHeaderDelta) Kind() Kind { return KindBlockHeaderDelta }

// BlockMetadataDelta is a raw line accepted while the candidate is
// accumulating its metadata section. IsBoundary is true for the line that
// opened or closed the metadata section itself (e.g. a "---" marker).
type BlockMetadataDelta struct {
	Base
	BlockScoped
	Delta       string
	Accumulated string
	IsBoundary  bool
}

func NewBlockMetadataDelta(now time.Time, blockID, delta, accumulated string, isBoundary bool) BlockMetadataDelta {
	return BlockMetadataDelta{
		Base:        newBase(now),
		BlockScoped: BlockScoped{BlockID: blockID},
		Delta:       delta,
		Accumulated: accumulated,
		IsBoundary:  isBoundary,
	}
}
func (BlockMetadataDelta) Kind() Kind { return KindBlockMetadataDelta }

// BlockContentDelta is a raw line accepted into the content section.
type BlockContentDelta struct {
	Base
	BlockScoped
	Delta       string
	Accumulated string
}

func NewBlockContentDelta(now time.Time, blockID, delta, accumulated string) BlockContentDelta {
	return BlockContentDelta{Base: newBase(now), BlockScoped: BlockScoped{BlockID: blockID}, Delta: delta, Accumulated: accumulated}
}
func (BlockContentDelta) Kind() Kind { return KindBlockContentDelta }

// BlockMetadataEnd is emitted once per candidate, at the METADATA->CONTENT
// transition, with a parsed metadata snapshot so consumers can validate
// early even though the block is not yet fully extracted.
type BlockMetadataEnd struct {
	Base
	BlockScoped
	Metadata         any
	ValidationPassed bool
	ValidationError  string
}

func NewBlockMetadataEnd(now time.Time, blockID string, metadata any, validationPassed bool, validationError string) BlockMetadataEnd {
	return BlockMetadataEnd{
		Base:             newBase(now),
		BlockScoped:      BlockScoped{BlockID: blockID},
		Metadata:         metadata,
		ValidationPassed: validationPassed,
		ValidationError:  validationError,
	}
}
func (BlockMetadataEnd) Kind() Kind { return KindBlockMetadataEnd }

// BlockContentEnd is emitted once content parsing and validation have
// completed, immediately before BlockEnd, or before BlockError (with
// ValidationPassed false) when a validator rejects the parsed block.
type BlockContentEnd struct {
	Base
	BlockScoped
	Content          any
	Raw              string
	ValidationPassed bool
	ValidationError  string
}

func NewBlockContentEnd(now time.Time, blockID string, content any, raw string, validationPassed bool, validationError string) BlockContentEnd {
	return BlockContentEnd{
		Base:             newBase(now),
		BlockScoped:      BlockScoped{BlockID: blockID},
		Content:          content,
		Raw:              raw,
		ValidationPassed: validationPassed,
		ValidationError:  validationError,
	}
}
func (BlockContentEnd) Kind() Kind { return KindBlockContentEnd }

// BlockEnd is the terminal event for a successfully extracted block.
type BlockEnd struct {
	Base
	BlockScoped
	StartLine int
	EndLine   int
	Block     block.Extracted
}

func NewBlockEnd(now time.Time, blockID string, startLine, endLine int, extracted block.Extracted) BlockEnd {
	return BlockEnd{
		Base:        newBase(now),
		BlockScoped: BlockScoped{BlockID: blockID},
		StartLine:   startLine,
		EndLine:     endLine,
		Block:       extracted,
	}
}
func (BlockEnd) Kind() Kind { return KindBlockEnd }

// BlockError is the terminal event for a candidate that was rejected.
type BlockError struct {
	Base
	BlockScoped
	StartLine int
	EndLine   int
	Err       *streamerr.Error
}

func NewBlockError(now time.Time, blockID string, startLine, endLine int, err *streamerr.Error) BlockError {
	return BlockError{
		Base:        newBase(now),
		BlockScoped: BlockScoped{BlockID: blockID},
		StartLine:   startLine,
		EndLine:     endLine,
		Err:         err,
	}
}
func (BlockError) Kind() Kind { return KindBlockError }

// OriginalEvent passes through the untouched source chunk a
// StreamAdapter extracted text from (a provider SDK event, say), for
// consumers that want both the normalized block stream and the raw
// upstream payload. Only emitted when the processor is configured with
// WithEmitOriginalEvents.
type OriginalEvent struct {
	Base
	Payload any
}

func NewOriginalEvent(now time.Time, payload any) OriginalEvent {
	return OriginalEvent{Base: newBase(now), Payload: payload}
}
func (OriginalEvent) Kind() Kind { return KindOriginalEvent }
