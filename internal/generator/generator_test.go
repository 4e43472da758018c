package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"topicbot/pkg/logx"
)

func newOpenAIServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func testConfig(baseURL string) Config {
	return Config{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		MaxTokens:   600,
		Temperature: 0.4,
		BaseURL:     baseURL + "/v1",
	}
}

func TestGenerateParsed(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK,
		`{"id":"resp-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"  Téma: X\n"},"finish_reason":"stop"}]}`)
	defer srv.Close()

	g := New(testConfig(srv.URL), logx.Nop())
	res, err := g.Generate(context.Background(), Prompt)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Raw {
		t.Fatal("expected parsed result")
	}
	if res.Text != "Téma: X" {
		t.Fatalf("Text = %q, want trimmed reply", res.Text)
	}
}

func TestGenerateRawFallback(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK, `{"id":"resp-2","object":"chat.completion"}`)
	defer srv.Close()

	g := New(testConfig(srv.URL), logx.Nop())
	res, err := g.Generate(context.Background(), Prompt)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Raw {
		t.Fatal("expected raw fallback for a body without choices")
	}
	if !strings.Contains(res.Text, `"id": "resp-2"`) {
		t.Fatalf("raw dump missing response fields: %q", res.Text)
	}
}

func TestGenerateTransportError(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusInternalServerError,
		`{"error":{"message":"boom","type":"server_error"}}`)
	defer srv.Close()

	g := New(testConfig(srv.URL), logx.Nop())
	if _, err := g.Generate(context.Background(), Prompt); err == nil {
		t.Fatal("expected error for non-success status")
	}
}
