package machine

import (
	"testing"

	"github.com/samsaffron/streamblocks/event"
	"github.com/samsaffron/streamblocks/internal/idgen"
	"github.com/samsaffron/streamblocks/registry"
	"github.com/samsaffron/streamblocks/streamerr"
	"github.com/samsaffron/streamblocks/syntax"
)

func newPreambleMachine(opts ...Option) *Machine {
	reg := registry.New(syntax.NewDelimiterPreamble("delimiter_preamble", ""))
	return New(reg, &idgen.BlockIDs{}, opts...)
}

func newFrontmatterMachine(opts ...Option) *Machine {
	reg := registry.New(syntax.NewDelimiterFrontmatter("delimiter_frontmatter", "", ""))
	return New(reg, &idgen.BlockIDs{}, opts...)
}

func processAll(m *Machine, lines []string) []event.Event {
	var events []event.Event
	for _, line := range lines {
		events = append(events, m.ProcessLine(line)...)
	}
	return events
}

func kinds(events []event.Event) []event.Kind {
	ks := make([]event.Kind, len(events))
	for i, e := range events {
		ks[i] = e.Kind()
	}
	return ks
}

func kindsEqual(t *testing.T, got []event.Event, want []event.Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("event kinds = %v, want %v", gk, want)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Fatalf("event kinds = %v, want %v", gk, want)
		}
	}
}

// TestS1DelimiterPreambleHappyPath mirrors the literal preamble scenario: a
// text line, a complete block, and a trailing text line.
func TestS1DelimiterPreambleHappyPath(t *testing.T) {
	m := newPreambleMachine()
	lines := []string{
		"hello",
		"!!b1:files_operations",
		"src/main.py:C",
		"!!end",
		"bye",
	}
	events := processAll(m, lines)

	kindsEqual(t, events, []event.Kind{
		event.KindTextContent,
		event.KindBlockStart,
		event.KindBlockHeaderDelta,
		event.KindBlockContentDelta,
		event.KindBlockContentEnd,
		event.KindBlockEnd,
		event.KindTextContent,
	})

	start := events[1].(event.BlockStart)
	if start.StartLine != 2 {
		t.Fatalf("BlockStart.StartLine = %d, want 2", start.StartLine)
	}

	end := events[5].(event.BlockEnd)
	if end.StartLine != 2 || end.EndLine != 4 {
		t.Fatalf("BlockEnd lines = (%d, %d), want (2, 4)", end.StartLine, end.EndLine)
	}
	if end.Block.BlockType != "files_operations" {
		t.Fatalf("BlockEnd.Block.BlockType = %q, want files_operations", end.Block.BlockType)
	}

	contentDelta := events[3].(event.BlockContentDelta)
	if contentDelta.Delta != "src/main.py:C" {
		t.Fatalf("BlockContentDelta.Delta = %q, want src/main.py:C", contentDelta.Delta)
	}

	first := events[0].(event.TextContent)
	if first.Line != "hello" {
		t.Fatalf("first TextContent.Line = %q, want hello", first.Line)
	}
	last := events[6].(event.TextContent)
	if last.Line != "bye" {
		t.Fatalf("last TextContent.Line = %q, want bye", last.Line)
	}
}

// TestS2FrontmatterEarlyMetadataEnd checks that BlockMetadataEnd carries a
// fully parsed metadata snapshot and is emitted before any
// BlockContentDelta, with a BlockMetadataDelta(is_boundary=true) flanking
// both sides of the metadata section.
func TestS2FrontmatterEarlyMetadataEnd(t *testing.T) {
	m := newFrontmatterMachine()
	lines := []string{
		"!!start",
		"---",
		"id: t1",
		"block_type: task",
		"---",
		"body",
		"!!end",
	}
	events := processAll(m, lines)

	kindsEqual(t, events, []event.Kind{
		event.KindBlockStart,
		event.KindBlockHeaderDelta,
		event.KindBlockMetadataDelta, // "---" entering
		event.KindBlockMetadataDelta, // "id: t1"
		event.KindBlockMetadataDelta, // "block_type: task"
		event.KindBlockMetadataDelta, // "---" leaving
		event.KindBlockMetadataEnd,
		event.KindBlockContentDelta, // "body"
		event.KindBlockContentEnd,
		event.KindBlockEnd,
	})

	entering := events[2].(event.BlockMetadataDelta)
	if !entering.IsBoundary {
		t.Fatalf("entering --- BlockMetadataDelta.IsBoundary = false, want true")
	}
	idLine := events[3].(event.BlockMetadataDelta)
	if idLine.IsBoundary {
		t.Fatalf("metadata body line incorrectly marked as boundary")
	}

	leaving := events[5].(event.BlockMetadataDelta)
	if !leaving.IsBoundary {
		t.Fatalf("leaving --- BlockMetadataDelta.IsBoundary = false, want true")
	}

	end := events[6].(event.BlockMetadataEnd)
	if !end.ValidationPassed {
		t.Fatalf("BlockMetadataEnd.ValidationPassed = false, want true")
	}
	meta := end.Metadata.(map[string]any)
	if meta["id"] != "t1" || meta["block_type"] != "task" {
		t.Fatalf("BlockMetadataEnd.Metadata = %#v, want id=t1 block_type=task", meta)
	}
}

// TestS3UnclosedBlockAtEOF checks Flush rejects an open candidate rather
// than silently dropping it.
func TestS3UnclosedBlockAtEOF(t *testing.T) {
	m := newFrontmatterMachine()
	lines := []string{
		"!!start",
		"---",
		"id: orphan",
		"block_type: task",
		"---",
		"still writing",
	}
	processAll(m, lines)

	flushed := m.Flush()
	if len(flushed) != 1 {
		t.Fatalf("Flush() returned %d events, want 1", len(flushed))
	}
	berr, ok := flushed[0].(event.BlockError)
	if !ok {
		t.Fatalf("Flush() event = %T, want event.BlockError", flushed[0])
	}
	if berr.Err.Code != streamerr.CodeUnclosedBlock {
		t.Fatalf("BlockError.Err.Code = %v, want %v", berr.Err.Code, streamerr.CodeUnclosedBlock)
	}
	if berr.StartLine != 1 {
		t.Fatalf("BlockError.StartLine = %d, want 1", berr.StartLine)
	}
	if berr.EndLine != len(lines) {
		t.Fatalf("BlockError.EndLine = %d, want %d", berr.EndLine, len(lines))
	}

	// A second Flush is a no-op: the candidate is already gone.
	if got := m.Flush(); got != nil {
		t.Fatalf("second Flush() = %#v, want nil", got)
	}
}

// TestS4MalformedYAMLReportsSyntaxError checks that a YAML error in
// frontmatter surfaces as CodeSyntaxError, not a generic missing-metadata
// rejection, and that the early BlockMetadataEnd already flagged it.
func TestS4MalformedYAMLReportsSyntaxError(t *testing.T) {
	m := newFrontmatterMachine()
	lines := []string{
		"!!start",
		"---",
		"id: broken",
		"settings: [unclosed",
		"---",
		"body",
		"!!end",
	}
	events := processAll(m, lines)

	var metaEnd event.BlockMetadataEnd
	var blockErr event.BlockError
	for _, e := range events {
		switch ev := e.(type) {
		case event.BlockMetadataEnd:
			metaEnd = ev
		case event.BlockError:
			blockErr = ev
		}
	}

	if metaEnd.ValidationPassed {
		t.Fatalf("BlockMetadataEnd.ValidationPassed = true, want false for malformed YAML")
	}
	if metaEnd.ValidationError == "" {
		t.Fatalf("BlockMetadataEnd.ValidationError is empty, want the YAML error")
	}

	if blockErr.Err == nil {
		t.Fatalf("no BlockError emitted for a block with malformed YAML metadata")
	}
	if blockErr.Err.Code != streamerr.CodeSyntaxError {
		t.Fatalf("BlockError.Err.Code = %v, want %v", blockErr.Err.Code, streamerr.CodeSyntaxError)
	}
}

// TestS5ChunkBoundaryRobustness checks that two machines fed the same lines,
// one through processAll and one through a hand-written ProcessLine loop,
// produce the same sequence of event kinds — the machine only ever sees
// whole lines, so this should hold trivially, but it documents and locks
// the invariant.
func TestS5ChunkBoundaryRobustness(t *testing.T) {
	lines := []string{
		"hello",
		"!!b1:files_operations",
		"src/main.py:C",
		"!!end",
		"bye",
	}

	m1 := newPreambleMachine()
	allAtOnce := processAll(m1, lines)

	m2 := newPreambleMachine()
	var oneAtATime []event.Event
	for _, line := range lines {
		oneAtATime = append(oneAtATime, m2.ProcessLine(line)...)
	}

	if len(allAtOnce) != len(oneAtATime) {
		t.Fatalf("event counts differ: %d vs %d", len(allAtOnce), len(oneAtATime))
	}
	for i := range allAtOnce {
		if allAtOnce[i].Kind() != oneAtATime[i].Kind() {
			t.Fatalf("event %d kind differs: %v vs %v", i, allAtOnce[i].Kind(), oneAtATime[i].Kind())
		}
	}
}

// TestS6SizeOverflowRejectsBlock checks a block exceeding max_block_size is
// rejected mid-accumulation rather than allowed to grow unbounded.
func TestS6SizeOverflowRejectsBlock(t *testing.T) {
	m := newPreambleMachine(WithMaxBlockSize(64))
	hundredBytes := make([]byte, 100)
	for i := range hundredBytes {
		hundredBytes[i] = 'x'
	}
	events := processAll(m, []string{
		"!!b1:files_operations",
		string(hundredBytes),
	})

	var berr event.BlockError
	found := false
	for _, e := range events {
		if ev, ok := e.(event.BlockError); ok {
			berr = ev
			found = true
		}
		if e.Kind() == event.KindBlockEnd {
			t.Fatalf("BlockEnd emitted for a block that exceeded max_block_size")
		}
	}
	if !found {
		t.Fatalf("no BlockError emitted when max_block_size was exceeded")
	}
	if berr.Err.Code != streamerr.CodeSizeExceeded {
		t.Fatalf("BlockError.Err.Code = %v, want %v", berr.Err.Code, streamerr.CodeSizeExceeded)
	}

	// The candidate was dropped: the next line is ordinary text again.
	trailing := m.ProcessLine("free text")
	if len(trailing) != 1 {
		t.Fatalf("post-rejection line produced %d events, want 1", len(trailing))
	}
	if _, ok := trailing[0].(event.TextContent); !ok {
		t.Fatalf("post-rejection event = %T, want event.TextContent", trailing[0])
	}
}

func TestMissingBlockTypeDefaultsToUnknown(t *testing.T) {
	reg := registry.New(syntax.NewDelimiterFrontmatter("delimiter_frontmatter", "", ""))
	m := New(reg, &idgen.BlockIDs{})

	events := processAll(m, []string{
		"!!start",
		"---",
		"id: only_id",
		"---",
		"body",
		"!!end",
	})

	var berr event.BlockError
	found := false
	for _, e := range events {
		if ev, ok := e.(event.BlockError); ok {
			berr = ev
			found = true
		}
	}
	// block_type defaults to "unknown" rather than being genuinely absent
	// for delimiter_frontmatter, so this should actually succeed; assert
	// that no rejection happened and the default took effect instead.
	if found {
		t.Fatalf("unexpected BlockError %v: block_type should default to \"unknown\"", berr.Err)
	}
}

func TestStrictUnknownTypeRejectsUnregisteredType(t *testing.T) {
	m := newPreambleMachine(WithStrictUnknownType(true))
	events := processAll(m, []string{
		"!!b1:mystery_type",
		"content",
		"!!end",
	})

	var berr event.BlockError
	found := false
	for _, e := range events {
		if ev, ok := e.(event.BlockError); ok {
			berr = ev
			found = true
		}
	}
	if !found {
		t.Fatalf("no BlockError emitted for an unregistered block_type under strict mode")
	}
	if berr.Err.Code != streamerr.CodeUnknownType {
		t.Fatalf("BlockError.Err.Code = %v, want %v", berr.Err.Code, streamerr.CodeUnknownType)
	}
}

func TestValidatorFailureRejectsBlock(t *testing.T) {
	reg := registry.New(syntax.NewDelimiterPreamble("delimiter_preamble", ""))
	reg.AddValidator("files_operations", func(any) bool { return false })
	m := New(reg, &idgen.BlockIDs{})

	events := processAll(m, []string{
		"!!b1:files_operations",
		"src/main.py:C",
		"!!end",
	})

	kindsEqual(t, events, []event.Kind{
		event.KindBlockStart,
		event.KindBlockHeaderDelta,
		event.KindBlockContentDelta,
		event.KindBlockContentEnd,
		event.KindBlockError,
	})

	contentEnd := events[3].(event.BlockContentEnd)
	if contentEnd.ValidationPassed {
		t.Fatalf("BlockContentEnd.ValidationPassed = true, want false")
	}
	berr := events[4].(event.BlockError)
	if berr.Err.Code != streamerr.CodeValidationFailed {
		t.Fatalf("BlockError.Err.Code = %v, want %v", berr.Err.Code, streamerr.CodeValidationFailed)
	}
}

// TestByteAccountingInvariant checks the candidate's RawText reconstructs
// the original lines exactly while a block is still accumulating.
func TestByteAccountingInvariant(t *testing.T) {
	m := New(registry.New(syntax.NewDelimiterPreamble("delimiter_preamble", "")), &idgen.BlockIDs{})

	lines := []string{"!!b1:files_operations", "line one", "line two", "!!end"}
	for _, line := range lines[:len(lines)-1] {
		m.ProcessLine(line)
	}
	c := m.ActiveCandidate()
	if c == nil {
		t.Fatalf("expected an active candidate before the closing line")
	}
	want := "!!b1:files_operations\nline one\nline two"
	if got := c.RawText(); got != want {
		t.Fatalf("RawText() = %q, want %q", got, want)
	}
}

// TestBlockIDStableAcrossEvents checks every block-scoped event for one
// candidate shares the same BlockID.
func TestBlockIDStableAcrossEvents(t *testing.T) {
	m := newPreambleMachine()
	events := processAll(m, []string{
		"!!b1:files_operations",
		"content",
		"!!end",
	})

	var id string
	check := func(got string) {
		t.Helper()
		if id == "" {
			id = got
			return
		}
		if got != id {
			t.Fatalf("BlockID changed mid-candidate: %q != %q", got, id)
		}
	}
	for _, e := range events {
		switch ev := e.(type) {
		case event.BlockStart:
			check(ev.BlockID)
		case event.BlockHeaderDelta:
			check(ev.BlockID)
		case event.BlockContentDelta:
			check(ev.BlockID)
		case event.BlockContentEnd:
			check(ev.BlockID)
		case event.BlockEnd:
			check(ev.BlockID)
		}
	}
	if id == "" {
		t.Fatalf("no block-scoped events found")
	}
}
