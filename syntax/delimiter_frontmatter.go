package syntax

import (
	"regexp"
	"strings"

	"github.com/samsaffron/streamblocks/block"
)

var frontmatterDelim = regexp.MustCompile(`^---\s*$`)

// DelimiterFrontmatter implements the "!!start" / YAML frontmatter / "!!end"
// grammar: opening and closing are explicit literal lines; between them a
// pair of "---" lines may bracket a YAML metadata section before content.
type DelimiterFrontmatter struct {
	name           string
	startDelimiter string
	endDelimiter   string
}

// NewDelimiterFrontmatter builds the syntax with the given start/end
// literals. Empty strings fall back to "!!start"/"!!end".
func NewDelimiterFrontmatter(name, start, end string) *DelimiterFrontmatter {
	if start == "" {
		start = "!!start"
	}
	if end == "" {
		end = "!!end"
	}
	return &DelimiterFrontmatter{name: name, startDelimiter: start, endDelimiter: end}
}

func (s *DelimiterFrontmatter) Name() string { return s.name }

func (s *DelimiterFrontmatter) DetectLine(line string, candidate *block.Candidate) Detection {
	if candidate == nil {
		if strings.TrimSpace(line) == s.startDelimiter {
			return Detection{IsOpening: true, SectionAdvance: block.HeaderSection}
		}
		return Detection{}
	}

	switch candidate.Section {
	case block.HeaderSection:
		if frontmatterDelim.MatchString(line) {
			return Detection{IsMetadataBoundary: true, SectionAdvance: block.MetadataSection}
		}
		// No frontmatter follows the opening: content begins immediately.
		return Detection{SectionAdvance: block.ContentSection}

	case block.MetadataSection:
		if frontmatterDelim.MatchString(line) {
			return Detection{IsMetadataBoundary: true, SectionAdvance: block.ContentSection}
		}
		return Detection{}

	case block.ContentSection:
		if strings.TrimSpace(line) == s.endDelimiter {
			return Detection{IsClosing: true}
		}
		return Detection{}
	}

	return Detection{}
}

// ExtractBlockType defaults to "unknown" when the metadata carries no
// block_type tag, mirroring the default ParseBlock applies when it is
// handed a nil schema: a frontmatter block with no type is permissively
// parsed, not rejected outright. A YAML syntax error still fails, so the
// real diagnostic surfaces from ParseBlock instead of this pre-check.
func (s *DelimiterFrontmatter) ExtractBlockType(candidate *block.Candidate) (string, bool) {
	meta, err := parseYAMLMetadata(candidate.MetadataLines)
	if err != nil {
		return "", false
	}
	if bt, ok := meta["block_type"].(string); ok {
		return bt, true
	}
	return "unknown", true
}

func (s *DelimiterFrontmatter) ParseBlock(candidate *block.Candidate, schema Schema) ParseResult {
	raw, err := parseYAMLMetadata(candidate.MetadataLines)
	if err != nil {
		return ParseResult{Success: false, Error: "invalid YAML: " + err.Error(), Err: err}
	}

	useDefault := schema == nil
	if useDefault {
		schema = BaseSchema{}
		if _, ok := raw["id"]; !ok {
			raw["id"] = "block_" + candidate.ComputeHash()
		}
		if _, ok := raw["block_type"]; !ok {
			raw["block_type"] = "unknown"
		}
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

func (s *DelimiterFrontmatter) ValidateBlock(block.Extracted) bool { return true }

// ParseMetadataEarly gives consumers a metadata preview as soon as the
// closing "---" is seen, ahead of the block's full extraction.
func (s *DelimiterFrontmatter) ParseMetadataEarly(candidate *block.Candidate) (any, error) {
	return parseYAMLMetadata(candidate.MetadataLines)
}
