// Package anthropic streams chat completions from the Anthropic Messages
// API over SSE. Upstream content_block_delta events carry incremental text;
// emitted chunks carry the accumulated text so far.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/bestony/mintranslate/internal/apperr"
	"github.com/bestony/mintranslate/internal/ports"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 4096
)

type Client struct {
	apiKey  string
	baseURL string
	http    *resty.Client
}

// New builds a client for the official endpoint, or a compatible one when
// baseURL is non-empty.
func New(apiKey, baseURL string) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, apperr.AnthropicAPIKeyMissing
	}
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	return &Client{apiKey: key, baseURL: strings.TrimRight(u, "/"), http: resty.New()}, nil
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest) (<-chan ports.StreamChunk, error) {
	body := map[string]any{
		"model":      req.Model,
		"max_tokens": maxTokens,
		"stream":     true,
		"messages": []map[string]string{
			{"role": "user", "content": req.User},
		},
		"temperature": req.Temperature,
	}
	if strings.TrimSpace(req.System) != "" {
		body["system"] = req.System
	}

	resp, err := c.http.R().SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(c.baseURL + "/v1/messages")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		b, _ := io.ReadAll(resp.RawBody())
		_ = resp.RawBody().Close()
		return nil, fmt.Errorf("anthropic stream: %s; body: %s", resp.Status(), b)
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
			if !bytes.HasPrefix(line, []byte("data: ")) {
				continue
			}
			payload := bytes.TrimPrefix(line, []byte("data: "))
			var ev struct {
				Type  string `json:"type"`
				Delta struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"delta"`
				Error struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			switch ev.Type {
			case "content_block_delta":
				if ev.Delta.Text == "" {
					continue
				}
				acc.WriteString(ev.Delta.Text)
				if !emit(ctx, out, ports.StreamChunk{Content: acc.String()}) {
					return
				}
			case "error":
				msg := ev.Error.Message
				if msg == "" {
					msg = string(apperr.AIRequestFailed)
				}
				emit(ctx, out, ports.StreamChunk{Err: errors.New(msg)})
				return
			case "message_stop":
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
