package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// testKeys is a fixed KeySource.
type testKeys string

func (k testKeys) APIKey(context.Context) (string, error) { return string(k), nil }

// failingKeys always fails, the way a missing credential does.
type failingKeys struct{ err error }

func (k failingKeys) APIKey(context.Context) (string, error) { return "", k.err }

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := newOpenAIProviderRaw(server.URL+"/v1", "gpt-4o-mini", testKeys("test-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	var mu sync.Mutex
	var gotAuth string
	var gotBody map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`Here you go: [{"question":"Q"}]`, "stop"))
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := p.Generate(context.Background(), SingleTurn("You are an assessment generator.", "Generate the questions now.", 0.5, 256))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `Here you go: [{"question":"Q"}]` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Usage.InputTokens != 40 {
		t.Fatalf("expected 40 input tokens, got %d", resp.Usage.InputTokens)
	}
	if resp.Usage.OutputTokens != 25 {
		t.Fatalf("expected 25 output tokens, got %d", resp.Usage.OutputTokens)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Fatalf("expected first message to be system, got %v", first["role"])
	}
}

func TestOpenAIProvider_KeyReadPerRequest(t *testing.T) {
	var mu sync.Mutex
	var auths []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("ok", "stop"))
	}
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)

	keys := &rotatingKeys{keys: []string{"first", "second"}}
	p, err := newOpenAIProviderRaw(server.URL+"/v1", "m", keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 2 {
		if _, err := p.Generate(context.Background(), SingleTurn("s", "u", 0, 10)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(auths) != 2 || auths[0] != "Bearer first" || auths[1] != "Bearer second" {
		t.Fatalf("expected key to be read per request, got %v", auths)
	}
}

type rotatingKeys struct {
	keys []string
	n    int
}

func (r *rotatingKeys) APIKey(context.Context) (string, error) {
	k := r.keys[r.n%len(r.keys)]
	r.n++
	return k, nil
}

func TestOpenAIProvider_MissingKeyMakesNoCall(t *testing.T) {
	var mu sync.Mutex
	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		called = true
		mu.Unlock()
	}
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)

	keyErr := errors.New("no key")
	p, err := newOpenAIProviderRaw(server.URL+"/v1", "m", failingKeys{err: keyErr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Generate(context.Background(), SingleTurn("s", "u", 0, 10))
	if !errors.Is(err, keyErr) {
		t.Fatalf("expected key error, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Fatal("expected no HTTP call without a key")
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`[{"question":`, "length"))
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), SingleTurn("s", "u", 0, 10))
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
	if maxTok.Text != `[{"question":` {
		t.Fatalf("expected partial text to be kept, got %q", maxTok.Text)
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "tokens",
				"message": "Rate limit exceeded",
				"code":    "rate_limit_exceeded",
			},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "server_error",
				"message": "Internal server error",
			},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
	if unavail.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", unavail.StatusCode)
	}
}

func TestOpenAIProvider_ModelID(t *testing.T) {
	p := &OpenAIProvider{model: "gpt-4o-mini"}
	if p.ModelID() != "gpt-4o-mini" {
		t.Fatalf("expected 'gpt-4o-mini', got %q", p.ModelID())
	}
}

func TestOpenAIProvider_RequiresKeySource(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}, nil); err == nil {
		t.Fatal("expected error without a key source")
	}
}
