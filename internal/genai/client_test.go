package genai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quizcraft/grammarquiz/internal/genai"
)

func textReply(parts ...string) map[string]any {
	ps := make([]map[string]string, 0, len(parts))
	for _, p := range parts {
		ps = append(ps, map[string]string{"text": p})
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": ps}},
		},
	}
}

func TestGenerateText_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("request body: %v", err)
		}
		if len(body.Contents) != 1 || body.Contents[0].Parts[0].Text != "hello" {
			t.Fatalf("unexpected request body: %+v", body)
		}
		_ = json.NewEncoder(w).Encode(textReply("wor", "ld"))
	}))
	defer ts.Close()

	c := genai.New(genai.Config{BaseURL: ts.URL, Model: "gemini-2.5-flash", APIKey: "test-key"})
	out, err := c.GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "world" {
		t.Fatalf("expected concatenated parts, got %q", out)
	}
}

func TestGenerateVision_SendsInlineData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Contents []struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData *struct {
						MimeType string `json:"mime_type"`
						Data     string `json:"data"`
					} `json:"inline_data"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("request body: %v", err)
		}
		parts := body.Contents[0].Parts
		if len(parts) != 2 || parts[1].InlineData == nil {
			t.Fatalf("expected text + inline image parts, got %+v", parts)
		}
		if parts[1].InlineData.MimeType != "image/png" || parts[1].InlineData.Data == "" {
			t.Fatalf("bad inline data: %+v", parts[1].InlineData)
		}
		_ = json.NewEncoder(w).Encode(textReply("ok"))
	}))
	defer ts.Close()

	c := genai.New(genai.Config{BaseURL: ts.URL, Model: "m", APIKey: "k"})
	if _, err := c.GenerateVision(context.Background(), "read this", []byte{1, 2, 3}, "image/png"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClassify_RateLimit(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"http 429", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"resource exhausted", http.StatusForbidden, `{"error":{"message":"limit","status":"RESOURCE_EXHAUSTED"}}`},
		{"quota message", http.StatusBadRequest, `{"error":{"message":"Quota exceeded for requests"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			c := genai.New(genai.Config{BaseURL: ts.URL, Model: "m", APIKey: "k"})
			_, err := c.GenerateText(context.Background(), "p")
			var apiErr *genai.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Kind != genai.KindRateLimited {
				t.Fatalf("expected KindRateLimited, got %s", apiErr.Kind)
			}
		})
	}
}

func TestClassify_GenericFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"internal"}}`))
	}))
	defer ts.Close()

	c := genai.New(genai.Config{BaseURL: ts.URL, Model: "m", APIKey: "k"})
	_, err := c.GenerateText(context.Background(), "p")
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != genai.KindAPIFailure || apiErr.StatusCode != 500 {
		t.Fatalf("unexpected classification: %+v", apiErr)
	}
}

func TestGenerateText_EmptyCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	c := genai.New(genai.Config{BaseURL: ts.URL, Model: "m", APIKey: "k"})
	_, err := c.GenerateText(context.Background(), "p")
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != genai.KindAPIFailure {
		t.Fatalf("expected generic APIError, got %v", err)
	}
}
