package syntax

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samsaffron/streamblocks/block"
)

// DelimiterPreamble implements the "!!<id>:<type>[:<p0>[:<p1>...]]" / "!!end"
// grammar: a single opening line carries id, block_type, and any positional
// parameters; there is no separate metadata section, and content is
// everything between the opening and closing lines.
type DelimiterPreamble struct {
	name      string
	delimiter string

	opening *regexp.Regexp
	closing *regexp.Regexp
}

// NewDelimiterPreamble builds a DelimiterPreamble syntax using delimiter as
// the marker prefix (e.g. "!!"). An empty delimiter defaults to "!!".
func NewDelimiterPreamble(name, delimiter string) *DelimiterPreamble {
	if delimiter == "" {
		delimiter = "!!"
	}
	esc := regexp.QuoteMeta(delimiter)
	return &DelimiterPreamble{
		name:      name,
		delimiter: delimiter,
		opening:   regexp.MustCompile(`^` + esc + `(\w+):(\w+)(:.+)?$`),
		closing:   regexp.MustCompile(`^` + esc + `end$`),
	}
}

func (s *DelimiterPreamble) Name() string { return s.name }

func (s *DelimiterPreamble) DetectLine(line string, candidate *block.Candidate) Detection {
	if candidate == nil {
		m := s.opening.FindStringSubmatch(line)
		if m == nil {
			return Detection{}
		}
		id, blockType, params := m[1], m[2], m[3]
		metadata := map[string]any{
			"id":         id,
			"block_type": blockType,
		}
		if params != "" {
			for i, part := range strings.Split(params[1:], ":") {
				metadata[fmt.Sprintf("param_%d", i)] = part
			}
		}
		// Preamble blocks have no metadata section: go straight to content.
		return Detection{IsOpening: true, Metadata: metadata, SectionAdvance: block.ContentSection}
	}

	if s.closing.MatchString(line) {
		return Detection{IsClosing: true}
	}
	return Detection{}
}

func (s *DelimiterPreamble) ExtractBlockType(candidate *block.Candidate) (string, bool) {
	if len(candidate.Lines) == 0 {
		return "", false
	}
	m := s.opening.FindStringSubmatch(candidate.Lines[0])
	if m == nil {
		return "", false
	}
	return m[2], true
}

func (s *DelimiterPreamble) ParseBlock(candidate *block.Candidate, schema Schema) ParseResult {
	if len(candidate.Lines) == 0 {
		return ParseResult{Success: false, Error: "missing opening line"}
	}
	m := s.opening.FindStringSubmatch(candidate.Lines[0])
	if m == nil {
		return ParseResult{Success: false, Error: "missing metadata in preamble"}
	}

	raw := map[string]any{"id": m[1], "block_type": m[2]}
	if m[3] != "" {
		for i, part := range strings.Split(m[3][1:], ":") {
			raw[fmt.Sprintf("param_%d", i)] = part
		}
	}

	if schema == nil {
		schema = BaseSchema{}
	}
	metadata, err := schema.ParseMetadata(raw)
	if err != nil {
		return ParseResult{Success: false, Error: "invalid metadata: " + err.Error(), Err: err}
	}

	// Content is everything strictly between the opening and closing lines.
	var contentText string
	if len(candidate.Lines) > 2 {
		contentText = strings.Join(candidate.Lines[1:len(candidate.Lines)-1], "\n")
	}
	content, err := schema.ParseContent(contentText)
	if err != nil {
		return ParseResult{Success: false, Error: "invalid content: " + err.Error(), Err: err}
	}

	return ParseResult{Success: true, Metadata: metadata, Content: content}
}

func (s *DelimiterPreamble) ValidateBlock(block.Extracted) bool { return true }

// ParseMetadataEarly is never invoked: this syntax has no separate
// metadata section, so it never reports a metadata boundary.
func (s *DelimiterPreamble) ParseMetadataEarly(*block.Candidate) (any, error) { return nil, nil }
