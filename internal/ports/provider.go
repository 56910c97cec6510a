package ports

import (
	"context"
)

// ChatRequest describes a single streaming chat completion call.
// System is included in the outgoing request only when non-blank.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
}

// StreamChunk is one element of a streaming chat response. Content always
// carries the full accumulated text so far: adapters fold provider deltas
// internally, so consumers replace their buffer with the latest chunk
// instead of concatenating. Err, when set, is terminal.
type StreamChunk struct {
	Content string
	Err     error
}

// ChatClient is a protocol-specific client for one LLM provider type.
type ChatClient interface {
	// Stream issues the request and returns a channel of chunks. The channel
	// is closed when the stream ends, errors, or ctx is cancelled.
	Stream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
}
