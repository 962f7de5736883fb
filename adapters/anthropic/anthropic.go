// Package anthropic adapts github.com/anthropics/anthropic-sdk-go's
// message-stream delta events into raw text for streamblocks.Processor.
package anthropic

import "github.com/anthropics/anthropic-sdk-go"

// Adapter implements adapters.StreamAdapter[anthropic.MessageStreamEventUnion].
type Adapter struct{}

func (Adapter) ExtractText(chunk anthropic.MessageStreamEventUnion) (string, bool) {
	event, ok := chunk.AsAny().(anthropic.ContentBlockDeltaEvent)
	if !ok {
		return "", false
	}
	delta, ok := event.Delta.AsAny().(anthropic.TextDelta)
	if !ok || delta.Text == "" {
		return "", false
	}
	return delta.Text, true
}

func (Adapter) IsComplete(chunk anthropic.MessageStreamEventUnion) bool {
	_, ok := chunk.AsAny().(anthropic.MessageStopEvent)
	return ok
}

func (Adapter) GetMetadata(chunk anthropic.MessageStreamEventUnion) map[string]any {
	event, ok := chunk.AsAny().(anthropic.MessageDeltaEvent)
	if !ok {
		return nil
	}
	return map[string]any{"stop_reason": string(event.Delta.StopReason)}
}
