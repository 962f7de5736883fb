// Package openai adapts the raw server-sent events of OpenAI's Responses
// API streaming endpoint into text for streamblocks.Processor. The
// Responses API's SSE event types aren't modeled as a typed union in
// openai-go the way the chat-completions endpoint is, so this adapter
// works directly on the decoded SSE event name and JSON payload, the
// same level the underlying stream is actually read at.
package openai

import "encoding/json"

// Chunk is one decoded SSE event: the "event:" line and the JSON body of
// the following "data:" line.
type Chunk struct {
	Event string
	Data  []byte
}

// Adapter implements adapters.StreamAdapter[Chunk].
type Adapter struct{}

func (Adapter) ExtractText(chunk Chunk) (string, bool) {
	if chunk.Event != "response.output_text.delta" {
		return "", false
	}
	var payload struct {
		Delta string `json:"delta"`
	}
	if err := json.Unmarshal(chunk.Data, &payload); err != nil || payload.Delta == "" {
		return "", false
	}
	return payload.Delta, true
}

func (Adapter) IsComplete(chunk Chunk) bool {
	return chunk.Event == "response.completed" || chunk.Event == "response.failed"
}

func (Adapter) GetMetadata(chunk Chunk) map[string]any {
	if chunk.Event != "response.completed" {
		return nil
	}
	return map[string]any{"event": chunk.Event}
}
