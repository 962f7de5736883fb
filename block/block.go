// Package block defines the in-flight candidate block and its terminal
// product, the extracted block. A Candidate is owned exclusively by the
// state machine in package machine: nothing else mutates it.
package block

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// State is the lifecycle stage of a Candidate.
type State string

const (
	HeaderDetected       State = "HEADER_DETECTED"
	AccumulatingMetadata State = "ACCUMULATING_METADATA"
	AccumulatingContent  State = "ACCUMULATING_CONTENT"
	ClosingDetected      State = "CLOSING_DETECTED"
	Rejected             State = "REJECTED"
	Completed            State = "COMPLETED"
)

// Section is which bucket absorbs the next line appended to a Candidate.
type Section string

const (
	HeaderSection   Section = "HEADER"
	MetadataSection Section = "METADATA"
	ContentSection  Section = "CONTENT"
)

// Candidate is one in-flight block, from its opening marker to a terminal
// transition (Completed or Rejected). Every field is exported and nothing
// enforces read-only access: syntaxes only read a candidate, while the
// machine package appends its lines and changes its State/Section.
type Candidate struct {
	SyntaxName string
	BlockID    string
	StartLine  int

	State   State
	Section Section

	Lines         []string
	MetadataLines []string
	ContentLines  []string

	// InlineMetadata is populated by syntaxes that encode metadata on the
	// opening line itself (the preamble syntax's header fields, the
	// markdown syntax's fence and info string). Nil for the
	// delimiter-frontmatter syntax, which uses a separate metadata section.
	InlineMetadata map[string]any

	SizeBytes int
}

// New creates a candidate opened at startLine by the named syntax.
func New(syntaxName, blockID string, startLine int) *Candidate {
	return &Candidate{
		SyntaxName: syntaxName,
		BlockID:    blockID,
		StartLine:  startLine,
		State:      HeaderDetected,
		Section:    HeaderSection,
	}
}

// AppendLine records line as accepted into the candidate, updating the
// running size total. It does not bucket the line into MetadataLines or
// ContentLines — callers that need bucketing do so explicitly, since
// whether a line belongs in a bucket depends on syntax-specific rules the
// machine applies after consulting the syntax's detection result.
func (c *Candidate) AppendLine(line string) {
	c.Lines = append(c.Lines, line)
	c.SizeBytes += len(line) + 1
}

// RawText is the full accumulated text of the candidate, lines joined by
// newline, including the opening and (if present) closing markers.
func (c *Candidate) RawText() string {
	return strings.Join(c.Lines, "\n")
}

// ComputeHash returns the first 8 hex characters of the SHA-256 digest of
// the first 64 bytes of RawText. Stable once all content is present; not a
// substitute for BlockID, which is the unique correlation key.
func (c *Candidate) ComputeHash() string {
	raw := c.RawText()
	if len(raw) > 64 {
		raw = raw[:64]
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:8]
}

// Extracted is the successful terminal product of a candidate: typed
// metadata and content plus extraction provenance. It references its
// syntax by name, not by pointer, so events holding an Extracted stay
// cheaply serializable and free of cycles.
type Extracted struct {
	Metadata   any
	Content    any
	SyntaxName string
	RawText    string
	LineStart  int
	LineEnd    int
	HashID     string
	BlockType  string
	BlockID    string
}
