package syntax

import (
	"testing"

	"github.com/samsaffron/streamblocks/block"
)

func TestDelimiterFrontmatterDetectOpening(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	d := s.DetectLine("!!start", nil)
	if !d.IsOpening {
		t.Fatalf("DetectLine() IsOpening = false, want true")
	}
	if d.SectionAdvance != block.HeaderSection {
		t.Fatalf("SectionAdvance = %v, want HeaderSection", d.SectionAdvance)
	}
}

// TestDelimiterFrontmatterFullCycle exercises DetectLine across every
// section transition, then checks the final candidate (assembled the way
// the section it landed in would accumulate it) parses correctly.
func TestDelimiterFrontmatterFullCycle(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("!!start")

	// "---" (entering): HEADER -> METADATA.
	d := s.DetectLine("---", c)
	if !d.IsMetadataBoundary || d.SectionAdvance != block.MetadataSection {
		t.Fatalf("opening --- detection = %#v", d)
	}
	c.Section = d.SectionAdvance

	for _, line := range []string{"id: t1", "block_type: task"} {
		d := s.DetectLine(line, c)
		if d.IsMetadataBoundary {
			t.Fatalf("metadata line %q unexpectedly reported as boundary", line)
		}
		c.MetadataLines = append(c.MetadataLines, line)
	}

	// "---" (leaving): METADATA -> CONTENT.
	d = s.DetectLine("---", c)
	if !d.IsMetadataBoundary || d.SectionAdvance != block.ContentSection {
		t.Fatalf("closing --- detection = %#v", d)
	}
	c.Section = d.SectionAdvance

	d = s.DetectLine("body", c)
	if d.IsClosing || d.IsMetadataBoundary {
		t.Fatalf("content line misdetected: %#v", d)
	}
	c.ContentLines = append(c.ContentLines, "body")

	d = s.DetectLine("!!end", c)
	if !d.IsClosing {
		t.Fatalf("DetectLine() did not detect the closing delimiter")
	}

	blockType, ok := s.ExtractBlockType(c)
	if !ok || blockType != "task" {
		t.Fatalf("ExtractBlockType() = (%q, %v), want (task, true)", blockType, ok)
	}

	result := s.ParseBlock(c, nil)
	if !result.Success {
		t.Fatalf("ParseBlock() failed: %s", result.Error)
	}
	if got := result.Content.(string); got != "body" {
		t.Fatalf("ParseBlock() content = %q, want %q", got, "body")
	}
}

func TestDelimiterFrontmatterNoFrontmatterGoesStraightToContent(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("!!start")
	c.Section = block.HeaderSection

	d := s.DetectLine("no frontmatter here", c)
	if d.IsMetadataBoundary {
		t.Fatalf("DetectLine() reported a metadata boundary for a non-delimiter line")
	}
	if d.SectionAdvance != block.ContentSection {
		t.Fatalf("SectionAdvance = %v, want ContentSection", d.SectionAdvance)
	}
}

func TestDelimiterFrontmatterParseMetadataEarly(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.MetadataLines = []string{"id: t1", "block_type: task"}

	meta, err := s.ParseMetadataEarly(c)
	if err != nil {
		t.Fatalf("ParseMetadataEarly() error: %v", err)
	}
	m := meta.(map[string]any)
	if m["id"] != "t1" || m["block_type"] != "task" {
		t.Fatalf("ParseMetadataEarly() = %#v, want id=t1 block_type=task", m)
	}
}

func TestDelimiterFrontmatterParseMetadataEarlyMalformedYAML(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.MetadataLines = []string{"id: broken", "settings: [unclosed"}

	_, err := s.ParseMetadataEarly(c)
	if err == nil {
		t.Fatalf("ParseMetadataEarly() error = nil, want a YAML parse error")
	}
}

func TestDelimiterFrontmatterParseBlockMalformedYAML(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.MetadataLines = []string{"id: broken", "settings: [unclosed"}
	c.ContentLines = []string{"body"}

	result := s.ParseBlock(c, nil)
	if result.Success {
		t.Fatalf("ParseBlock() succeeded with malformed YAML metadata")
	}
	if result.Err == nil {
		t.Fatalf("ParseBlock() did not surface the underlying YAML error")
	}
}

func TestDelimiterFrontmatterDefaultsMissingIDAndType(t *testing.T) {
	s := NewDelimiterFrontmatter("delimiter_frontmatter", "", "")
	c := block.New(s.Name(), "b_000001", 1)
	c.AppendLine("!!start")

	result := s.ParseBlock(c, nil)
	if !result.Success {
		t.Fatalf("ParseBlock() failed: %s", result.Error)
	}
	meta := result.Metadata.(map[string]any)
	if meta["block_type"] != "unknown" {
		t.Fatalf("ParseBlock() block_type = %v, want unknown", meta["block_type"])
	}
	if _, ok := meta["id"]; !ok {
		t.Fatalf("ParseBlock() did not default a missing id")
	}
}
