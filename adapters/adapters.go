// Package adapters bridges provider-specific streaming chunk shapes (an
// LLM SDK's delta event, a raw SSE payload, whatever a given upstream
// emits) into the plain []byte chunks streamblocks.Processor consumes.
// Subpackages gemini, openai, and anthropic are reference adapters for
// the three provider SDKs; IdentityAdapter covers the common case of a
// source that already produces raw text chunks.
package adapters

// StreamAdapter extracts raw text from one provider chunk at a time.
// Implementations are expected to be stateless per chunk; any
// accumulation a provider's wire format requires (partial JSON deltas,
// multi-part messages) is the adapter's own concern, not the caller's.
type StreamAdapter[T any] interface {
	// ExtractText returns the text payload of chunk, or ok=false if the
	// chunk carries no text (e.g. a tool-call delta, a usage summary).
	ExtractText(chunk T) (text string, ok bool)

	// IsComplete reports whether chunk signals the end of the stream.
	IsComplete(chunk T) bool

	// GetMetadata returns any out-of-band metadata chunk carries (model
	// name, finish reason, token usage) for callers that want it
	// alongside the extracted text. Returns nil when chunk carries none.
	GetMetadata(chunk T) map[string]any
}

// IdentityAdapter adapts a stream whose chunks are already raw text.
type IdentityAdapter struct{}

func (IdentityAdapter) ExtractText(chunk string) (string, bool) { return chunk, chunk != "" }
func (IdentityAdapter) IsComplete(string) bool                  { return false }
func (IdentityAdapter) GetMetadata(string) map[string]any       { return nil }
