package syntax

import (
	"testing"

	"github.com/samsaffron/streamblocks/block"
)

func TestDelimiterPreambleDetectOpening(t *testing.T) {
	s := NewDelimiterPreamble("delimiter_preamble", "")
	d := s.DetectLine("!!b1:files_operations", nil)
	if !d.IsOpening {
		t.Fatalf("DetectLine() IsOpening = false, want true")
	}
	if d.SectionAdvance != block.ContentSection {
		t.Fatalf("SectionAdvance = %v, want ContentSection", d.SectionAdvance)
	}
	if got := d.Metadata["id"]; got != "b1" {
		t.Fatalf("Metadata[id] = %v, want b1", got)
	}
	if got := d.Metadata["block_type"]; got != "files_operations" {
		t.Fatalf("Metadata[block_type] = %v, want files_operations", got)
	}
}

func TestDelimiterPreambleIgnoresNonMarkerLines(t *testing.T) {
	s := NewDelimiterPreamble("delimiter_preamble", "")
	d := s.DetectLine("just some prose", nil)
	if d.IsOpening {
		t.Fatalf("DetectLine() IsOpening = true for plain text")
	}
}

func TestDelimiterPreambleDetectClosing(t *testing.T) {
	s := NewDelimiterPreamble("delimiter_preamble", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("!!b1:files_operations")
	d := s.DetectLine("!!end", c)
	if !d.IsClosing {
		t.Fatalf("DetectLine() IsClosing = false, want true")
	}
}

func TestDelimiterPreambleParseBlock(t *testing.T) {
	s := NewDelimiterPreamble("delimiter_preamble", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("!!b1:files_operations")
	c.AppendLine("src/main.py:C")
	c.AppendLine("!!end")

	blockType, ok := s.ExtractBlockType(c)
	if !ok || blockType != "files_operations" {
		t.Fatalf("ExtractBlockType() = (%q, %v), want (files_operations, true)", blockType, ok)
	}

	result := s.ParseBlock(c, nil)
	if !result.Success {
		t.Fatalf("ParseBlock() failed: %s", result.Error)
	}
	if got := result.Content.(string); got != "src/main.py:C" {
		t.Fatalf("ParseBlock() content = %q, want %q", got, "src/main.py:C")
	}
}

func TestDelimiterPreambleParseBlockWithParams(t *testing.T) {
	s := NewDelimiterPreamble("delimiter_preamble", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("!!b1:task:urgent:reviewed")
	c.AppendLine("!!end")

	result := s.ParseBlock(c, nil)
	if !result.Success {
		t.Fatalf("ParseBlock() failed: %s", result.Error)
	}
	meta := result.Metadata.(map[string]any)
	if meta["param_0"] != "urgent" || meta["param_1"] != "reviewed" {
		t.Fatalf("ParseBlock() metadata = %#v, want param_0=urgent param_1=reviewed", meta)
	}
}

func TestDelimiterPreambleParseMetadataEarlyIsNoop(t *testing.T) {
	s := NewDelimiterPreamble("delimiter_preamble", "")
	c := block.New(s.Name(), "b_000001", 1)
	meta, err := s.ParseMetadataEarly(c)
	if meta != nil || err != nil {
		t.Fatalf("ParseMetadataEarly() = (%v, %v), want (nil, nil)", meta, err)
	}
}

func TestDelimiterPreambleCustomDelimiter(t *testing.T) {
	s := NewDelimiterPreamble("custom", "##")
	d := s.DetectLine("##b1:task", nil)
	if !d.IsOpening {
		t.Fatalf("DetectLine() with custom delimiter did not detect opening")
	}
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("##b1:task")
	if d := s.DetectLine("##end", c); !d.IsClosing {
		t.Fatalf("DetectLine() with custom delimiter did not detect closing")
	}
}
