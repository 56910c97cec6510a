// Package gemini streams chat completions from the Gemini generateContent
// API (alt=sse). Each SSE event carries an incremental candidate part;
// emitted chunks carry the accumulated text so far.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/bestony/mintranslate/internal/apperr"
	"github.com/bestony/mintranslate/internal/ports"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

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
		return nil, apperr.GeminiAPIKeyMissing
	}
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	return &Client{apiKey: key, baseURL: strings.TrimRight(u, "/"), http: resty.New()}, nil
}

func (c *Client) Stream(ctx context.Context, req ports.ChatRequest) (<-chan ports.StreamChunk, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": req.User}}},
		},
		"generationConfig": map[string]any{"temperature": req.Temperature},
	}
	if strings.TrimSpace(req.System) != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.System}},
		}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, req.Model)
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		b, _ := io.ReadAll(resp.RawBody())
		_ = resp.RawBody().Close()
		return nil, fmt.Errorf("gemini stream: %s; body: %s", resp.Status(), b)
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
				Candidates []struct {
					Content struct {
						Parts []struct {
							Text string `json:"text"`
						} `json:"parts"`
					} `json:"content"`
				} `json:"candidates"`
			}
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			if len(ev.Candidates) == 0 {
				continue
			}
			grew := false
			for _, part := range ev.Candidates[0].Content.Parts {
				if part.Text != "" {
					acc.WriteString(part.Text)
					grew = true
				}
			}
			if grew && !emit(ctx, out, ports.StreamChunk{Content: acc.String()}) {
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
