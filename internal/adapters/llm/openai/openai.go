// Package openai adapts OpenAI-compatible chat completion endpoints. The
// upstream stream delivers incremental deltas; chunks emitted here carry the
// accumulated text so far, per the ports.StreamChunk contract.
package openai

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bestony/mintranslate/internal/apperr"
	"github.com/bestony/mintranslate/internal/ports"
)

type Client struct {
	client *openai.Client
}

// New builds a client for the official endpoint, or a compatible one when
// baseURL is non-empty.
func New(apiKey, baseURL string) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, apperr.OpenAIAPIKeyMissing
	}
	cfg := openai.DefaultConfig(key)
	if u := strings.TrimSpace(baseURL); u != "" {
		cfg.BaseURL = u
	}
	return &Client{client: openai.NewClientWithConfig(cfg)}, nil
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest) (<-chan ports.StreamChunk, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan ports.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()
		var acc strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				emit(ctx, out, ports.StreamChunk{Err: err})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			acc.WriteString(resp.Choices[0].Delta.Content)
			if !emit(ctx, out, ports.StreamChunk{Content: acc.String()}) {
				return
			}
		}
	}()
	return out, nil
}

func emit(ctx context.Context, out chan<- ports.StreamChunk, c ports.StreamChunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
