// Package registry binds a Syntax to the set of block_type schemas and
// validators it recognizes. A Registry is single-syntax for its whole
// lifetime: it does not arbitrate between competing grammars, only between
// competing block_type tags within the one grammar it was built for.
package registry

import (
	"github.com/samsaffron/streamblocks/syntax"
)

// Validator runs after a successful parse; returning false rejects the
// block with streamerr.CodeValidationFailed.
type Validator func(extracted any) bool

// Registry maps block_type tags to the Schema that parses them, plus any
// extra validators layered on top. Registration is last-write-wins: a
// later Register call for the same block_type silently replaces the
// earlier one, matching how the block syntaxes themselves treat
// redeclaration.
type Registry struct {
	syn        syntax.Syntax
	schemas    map[string]syntax.Schema
	validators map[string][]Validator
}

// New builds a Registry bound to syn. syn is never nil in practice; every
// constructed Processor owns exactly one Registry per configured syntax.
func New(syn syntax.Syntax) *Registry {
	return &Registry{
		syn:        syn,
		schemas:    make(map[string]syntax.Schema),
		validators: make(map[string][]Validator),
	}
}

// Syntax returns the syntax this registry was built for.
func (r *Registry) Syntax() syntax.Syntax { return r.syn }

// Register associates blockType with schema, replacing any prior
// registration for the same tag.
func (r *Registry) Register(blockType string, schema syntax.Schema) {
	r.schemas[blockType] = schema
}

// AddValidator appends an extra validation step for blockType, run after
// the schema-level parse succeeds and the syntax's own ValidateBlock
// passes.
func (r *Registry) AddValidator(blockType string, v Validator) {
	r.validators[blockType] = append(r.validators[blockType], v)
}

// Schema returns the schema registered for blockType, or nil if none was
// registered — callers pass nil through to Syntax.ParseBlock, which falls
// back to permissive base behaviour.
func (r *Registry) Schema(blockType string) syntax.Schema {
	return r.schemas[blockType]
}

// Known reports whether blockType has a registered schema.
func (r *Registry) Known(blockType string) bool {
	_, ok := r.schemas[blockType]
	return ok
}

// Validate runs the validators registered for blockType against content in
// the order they were added, returning false at the first one that rejects
// it; the remaining validators are not run. No registered validators means
// validation trivially passes.
func (r *Registry) Validate(blockType string, content any) bool {
	for _, v := range r.validators[blockType] {
		if !v(content) {
			return false
		}
	}
	return true
}
