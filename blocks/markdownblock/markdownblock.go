// Package markdownblock is a reference block schema for "markdown"
// block_type content, backed by goldmark (the parser glamour itself
// renders through). It demonstrates a real schema plugged into the
// registry: structured metadata plus a parsed, validated document rather
// than the registry's permissive raw-string fallback.
package markdownblock

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Metadata is the typed metadata this schema expects: a title and
// optional tag list, the fields a markdown-frontmatter block commonly
// carries.
type Metadata struct {
	Title string
	Tags  []string
}

// Content is the parsed result: the original markdown plus a heading
// count, used here as a simple structural signal that the document
// actually parsed into something sensible.
type Content struct {
	Raw          string
	HeadingCount int
}

// Schema implements syntax.Schema for block_type "markdown".
type Schema struct {
	md goldmark.Markdown
}

// New builds a markdown Schema using goldmark's default parser.
func New() *Schema {
	return &Schema{md: goldmark.New()}
}

func (s *Schema) ParseMetadata(raw map[string]any) (any, error) {
	m := Metadata{}
	if title, ok := raw["title"].(string); ok {
		m.Title = title
	}
	if tags, ok := raw["tags"].([]any); ok {
		for _, t := range tags {
			if ts, ok := t.(string); ok {
				m.Tags = append(m.Tags, ts)
			}
		}
	}
	return m, nil
}

func (s *Schema) ParseContent(raw string) (any, error) {
	src := []byte(raw)
	doc := s.md.Parser().Parse(text.NewReader(src))

	headings := 0
	var walkErr error
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if _, ok := n.(*ast.Heading); ok {
				headings++
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		walkErr = fmt.Errorf("walk markdown content: %w", err)
	}

	return Content{Raw: raw, HeadingCount: headings}, walkErr
}
