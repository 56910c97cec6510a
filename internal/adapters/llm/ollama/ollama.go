// Package ollama streams chat completions from a local Ollama host. The
// /api/chat endpoint answers with one JSON object per line; emitted chunks
// carry the accumulated text so far.
package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/bestony/mintranslate/internal/ports"
)

const defaultHost = "http://localhost:11434"

type Client struct {
	host string
	http *resty.Client
}

// New builds a client for the given host; an empty host falls back to the
// well-known local default. Ollama needs no credential.
func New(host string) *Client {
	h := strings.TrimSpace(host)
	if h == "" {
		h = defaultHost
	}
	return &Client{host: strings.TrimRight(h, "/"), http: resty.New()}
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest) (<-chan ports.StreamChunk, error) {
	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.User})

	body := map[string]any{
		"model":    req.Model,
		"messages": messages,
		"stream":   true,
		"options":  map[string]any{"temperature": req.Temperature},
	}

	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(c.host + "/api/chat")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		b, _ := io.ReadAll(resp.RawBody())
		_ = resp.RawBody().Close()
		return nil, fmt.Errorf("ollama stream: %s; body: %s", resp.Status(), b)
	}

	out := make(chan ports.StreamChunk)
	go func() {
		defer close(out)
		defer func() { _ = resp.RawBody().Close() }()
		var acc strings.Builder
		scanner := bufio.NewScanner(resp.RawBody())
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var ev struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
				Done  bool   `json:"done"`
				Error string `json:"error"`
			}
			if err := json.Unmarshal(line, &ev); err != nil {
				continue
			}
			if ev.Error != "" {
				emit(ctx, out, ports.StreamChunk{Err: errors.New(ev.Error)})
				return
			}
			if ev.Message.Content != "" {
				acc.WriteString(ev.Message.Content)
				if !emit(ctx, out, ports.StreamChunk{Content: acc.String()}) {
					return
				}
			}
			if ev.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			emit(ctx, out, ports.StreamChunk{Err: err})
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
