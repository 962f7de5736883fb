// Package syntax defines the per-grammar contract the block state machine
// drives a candidate through: detecting markers, extracting a block_type
// tag, and parsing a complete candidate into typed metadata and content.
package syntax

import "github.com/samsaffron/streamblocks/block"

// Detection is what a Syntax returns for a single line.
type Detection struct {
	IsOpening          bool
	IsClosing          bool
	IsMetadataBoundary bool
	// Metadata carries inline metadata extracted from the opening line
	// itself (the preamble syntax's header fields, the markdown syntax's
	// fence and info string). The delimiter-frontmatter syntax never
	// populates it, since its metadata lives in a separate YAML section.
	Metadata map[string]any
	// SectionAdvance, when non-empty, is the section the machine should
	// move the candidate to after accepting this line. Detection never
	// mutates the candidate directly; the machine applies the advance.
	SectionAdvance block.Section
}

// ParseResult is what parsing a complete candidate produces.
type ParseResult struct {
	Success  bool
	Metadata any
	Content  any
	Error    string
	Err      error // underlying error for diagnostics, e.g. a YAML error
}

// Schema coerces raw metadata/content into typed values for one
// block_type. The registry stores these keyed by block_type; a Syntax
// calls back into the schema it was handed by the registry during
// ParseBlock. nil means "use the syntax's generic base behaviour".
type Schema interface {
	ParseMetadata(raw map[string]any) (any, error)
	ParseContent(raw string) (any, error)
}

// Syntax is the polymorphic contract each block envelope grammar
// implements. A Registry owns exactly one Syntax for its lifetime.
type Syntax interface {
	// Name identifies this syntax in events and error messages.
	Name() string

	// DetectLine inspects line for significance. When candidate is nil the
	// syntax is searching for an opening marker; otherwise it is
	// inspecting a line inside a block it owns, and may determine a
	// section transition via Detection.SectionAdvance (frontmatter-style
	// transitions across "---" markers).
	DetectLine(line string, candidate *block.Candidate) Detection

	// ExtractBlockType performs a cheap pre-parse pass over the candidate
	// to determine the block_type tag, used to look up a Schema. Returns
	// ok=false if no type can be determined yet.
	ExtractBlockType(candidate *block.Candidate) (blockType string, ok bool)

	// ParseBlock fully parses a complete candidate using schema (which may
	// be nil, meaning "use generic base types").
	ParseBlock(candidate *block.Candidate, schema Schema) ParseResult

	// ParseMetadataEarly produces a best-effort metadata snapshot at the
	// METADATA->CONTENT boundary, before the candidate has closed. Syntaxes
	// with no separate metadata section (delimiter-preamble) are never
	// asked, since they never report a metadata boundary; they return
	// (nil, nil).
	ParseMetadataEarly(candidate *block.Candidate) (any, error)

	// ValidateBlock runs syntax-specific validation after a successful
	// parse. The default behaviour for all three built-in syntaxes is to
	// always return true; syntaxes are free to override this.
	ValidateBlock(extracted block.Extracted) bool
}
