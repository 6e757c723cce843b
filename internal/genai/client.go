// Package genai is a thin client for a Gemini-style generateContent REST API.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  string
}

type Config struct {
	BaseURL string // e.g. https://generativelanguage.googleapis.com
	Model   string // e.g. gemini-2.5-flash
	APIKey  string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	h := &http.Client{}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{
		http:    h,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

// GenerateText sends a single text prompt and returns the model's raw text reply.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

// GenerateVision sends a prompt plus one inline image.
func (c *Client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return c.generate(ctx, []part{
		{Text: prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	})
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	})
	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return "", &APIError{Kind: KindAPIFailure, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", &APIError{Kind: KindAPIFailure, Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &APIError{Kind: KindAPIFailure, StatusCode: res.StatusCode, Message: err.Error()}
	}
	if res.StatusCode/100 != 2 {
		return "", classifyHTTP(res.StatusCode, raw)
	}

	var reply struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", &APIError{Kind: KindAPIFailure, StatusCode: res.StatusCode, Message: "decode reply: " + err.Error()}
	}
	if len(reply.Candidates) == 0 {
		return "", &APIError{Kind: KindAPIFailure, StatusCode: res.StatusCode, Message: "no candidates in reply"}
	}
	var sb strings.Builder
	for _, p := range reply.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func classifyHTTP(status int, raw []byte) *APIError {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if status == http.StatusTooManyRequests || body.Error.Status == "RESOURCE_EXHAUSTED" ||
		strings.Contains(strings.ToLower(msg), "quota") {
		return &APIError{Kind: KindRateLimited, StatusCode: status, Message: msg}
	}
	return &APIError{Kind: KindAPIFailure, StatusCode: status, Message: msg}
}
