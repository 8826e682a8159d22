// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		handler(w, req)
	}))
	t.Cleanup(server.Close)

	return server
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}

	c, err := New(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", c.Model())
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	var got chatRequest
	server := newTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	})

	c, err := New(Config{BaseURL: server.URL + "/", APIKey: "test-key", Model: "m"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := c.Complete(context.Background(), Request{System: "sys", User: "hi", Temperature: 0})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected hello, got %q", out)
	}

	if got.Model != "m" || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request: %#v", got)
	}
	if got.ResponseFormat != nil {
		t.Fatalf("expected no response format for plain completion")
	}
}

func TestCompleteJSON(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Temperature != 0.3 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n{\\\"a\\\": 1}\\n```" + `"}}]}`))
	})

	c, err := New(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var out struct {
		A int `json:"a"`
	}
	if err := CompleteJSON(context.Background(), c, Request{User: "x", Temperature: 0.3}, &out); err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if out.A != 1 {
		t.Fatalf("expected a=1, got %d", out.A)
	}
}

func TestCompleteErrors(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		switch req.Messages[len(req.Messages)-1].Content {
		case "empty":
			_, _ = w.Write([]byte(`{"choices":[]}`))
		case "junk":
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json"}}]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
		}
	})

	c, err := New(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()

	if _, err := c.Complete(ctx, Request{User: "empty"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}

	var out map[string]any
	if err := CompleteJSON(ctx, c, Request{User: "junk"}, &out); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}

	_, err = c.Complete(ctx, Request{User: "fail"})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{}\n```":            `{}`,
	}

	for in, want := range tests {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
