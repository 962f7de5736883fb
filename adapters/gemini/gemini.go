// Package gemini adapts google.golang.org/genai's streaming response
// chunks into raw text for streamblocks.Processor.
package gemini

import "google.golang.org/genai"

// Adapter implements adapters.StreamAdapter[*genai.GenerateContentResponse].
type Adapter struct{}

func (Adapter) ExtractText(chunk *genai.GenerateContentResponse) (string, bool) {
	if chunk == nil {
		return "", false
	}
	text := chunk.Text()
	return text, text != ""
}

func (Adapter) IsComplete(chunk *genai.GenerateContentResponse) bool {
	if chunk == nil || len(chunk.Candidates) == 0 {
		return false
	}
	return chunk.Candidates[0].FinishReason != ""
}

func (Adapter) GetMetadata(chunk *genai.GenerateContentResponse) map[string]any {
	if chunk == nil || chunk.UsageMetadata == nil {
		return nil
	}
	return map[string]any{
		"candidates_token_count": chunk.UsageMetadata.CandidatesTokenCount,
		"prompt_token_count":     chunk.UsageMetadata.PromptTokenCount,
	}
}
