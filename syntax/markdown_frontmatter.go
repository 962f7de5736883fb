package syntax

import (
	"regexp"
	"strings"

	"github.com/samsaffron/streamblocks/block"
)

var mdFence = regexp.MustCompile("^(```+|~~~+)\\s*(\\S*)\\s*$")

// MarkdownFrontmatter implements the fenced-code-block grammar familiar
// from markdown: an opening fence optionally carries an info string, the
// fence may be followed by a YAML frontmatter section bracketed in "---"
// lines, and a fence of the same kind closes the block. block_type is the
// frontmatter's block_type key when present, otherwise the info string,
// falling back to "markdown" when both are absent.
type MarkdownFrontmatter struct {
	name string
}

func NewMarkdownFrontmatter(name string) *MarkdownFrontmatter {
	return &MarkdownFrontmatter{name: name}
}

func (s *MarkdownFrontmatter) Name() string { return s.name }

func (s *MarkdownFrontmatter) DetectLine(line string, candidate *block.Candidate) Detection {
	if candidate == nil {
		m := mdFence.FindStringSubmatch(line)
		if m == nil {
			return Detection{}
		}
		metadata := map[string]any{"_fence": m[1]}
		if m[2] != "" {
			metadata["info_string"] = m[2]
		}
		return Detection{IsOpening: true, Metadata: metadata, SectionAdvance: block.HeaderSection}
	}

	switch candidate.Section {
	case block.HeaderSection:
		if frontmatterDelim.MatchString(line) {
			return Detection{IsMetadataBoundary: true, SectionAdvance: block.MetadataSection}
		}
		return Detection{SectionAdvance: block.ContentSection}

	case block.MetadataSection:
		if frontmatterDelim.MatchString(line) {
			return Detection{IsMetadataBoundary: true, SectionAdvance: block.ContentSection}
		}
		return Detection{}

	case block.ContentSection:
		if s.isClosingFence(candidate, line) {
			return Detection{IsClosing: true}
		}
		return Detection{}
	}

	return Detection{}
}

func (s *MarkdownFrontmatter) isClosingFence(candidate *block.Candidate, line string) bool {
	fence, _ := candidate.InlineMetadata["_fence"].(string)
	if fence == "" {
		return false
	}
	trimmed := strings.TrimRight(line, " \t")
	fenceChar := fence[0]
	if trimmed == "" || trimmed[0] != fenceChar {
		return false
	}
	return strings.Count(trimmed, string(fenceChar)) == len(trimmed) && len(trimmed) >= len(fence)
}

func (s *MarkdownFrontmatter) ExtractBlockType(candidate *block.Candidate) (string, bool) {
	if meta, err := parseYAMLMetadata(candidate.MetadataLines); err == nil {
		if bt, ok := meta["block_type"].(string); ok && bt != "" {
			return bt, true
		}
	}
	if info, ok := candidate.InlineMetadata["info_string"].(string); ok && info != "" {
		return info, true
	}
	return "markdown", true
}

func (s *MarkdownFrontmatter) ParseBlock(candidate *block.Candidate, schema Schema) ParseResult {
	raw, err := parseYAMLMetadata(candidate.MetadataLines)
	if err != nil {
		return ParseResult{Success: false, Error: "invalid YAML: " + err.Error(), Err: err}
	}
	if info, ok := candidate.InlineMetadata["info_string"].(string); ok {
		if _, exists := raw["info_string"]; !exists {
			raw["info_string"] = info
		}
	}

	if schema == nil {
		schema = BaseSchema{}
	}
	metadata, err := schema.ParseMetadata(raw)
	if err != nil {
		return ParseResult{Success: false, Error: "invalid metadata: " + err.Error(), Err: err}
	}

	contentText := strings.Join(candidate.ContentLines, "\n")
	content, err := schema.ParseContent(contentText)
	if err != nil {
		return ParseResult{Success: false, Error: "invalid content: " + err.Error(), Err: err}
	}

	return ParseResult{Success: true, Metadata: metadata, Content: content}
}

func (s *MarkdownFrontmatter) ValidateBlock(block.Extracted) bool { return true }

// ParseMetadataEarly gives consumers a metadata preview as soon as the
// closing "---" is seen, ahead of the block's full extraction.
func (s *MarkdownFrontmatter) ParseMetadataEarly(candidate *block.Candidate) (any, error) {
	return parseYAMLMetadata(candidate.MetadataLines)
}
