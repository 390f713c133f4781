package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/config"
)

func ollamaHandler(reply string, calls *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": reply},
		})
	}
}

func TestChat_PriorityOrder(t *testing.T) {
	var firstCalls, secondCalls atomic.Int64
	first := httptest.NewServer(ollamaHandler("from-first", &firstCalls))
	defer first.Close()
	second := httptest.NewServer(ollamaHandler("from-second", &secondCalls))
	defer second.Close()

	m, err := NewManager([]config.Backend{
		{Name: "first", Kind: "ollama", BaseURL: first.URL, Model: "m"},
		{Name: "second", Kind: "ollama", BaseURL: second.URL, Model: "m"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	got, err := m.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "from-first" {
		t.Errorf("expected first backend to answer, got %q", got)
	}
	if secondCalls.Load() != 0 {
		t.Errorf("second backend should not have been called")
	}
}

func TestChat_FailsOver(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer dead.Close()
	var calls atomic.Int64
	alive := httptest.NewServer(ollamaHandler("rescued", &calls))
	defer alive.Close()

	m, err := NewManager([]config.Backend{
		{Name: "dead", Kind: "ollama", BaseURL: dead.URL, Model: "m"},
		{Name: "alive", Kind: "ollama", BaseURL: alive.URL, Model: "m"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	got, err := m.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "rescued" {
		t.Errorf("expected failover answer, got %q", got)
	}
}

func TestChat_AllExhausted(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer dead.Close()

	m, err := NewManager([]config.Backend{
		{Name: "dead", Kind: "ollama", BaseURL: dead.URL, Model: "m"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	_, err = m.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *backend.Error, got %v", err)
	}
}

func TestChat_NoBackends(t *testing.T) {
	m, err := NewManager(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if m.Available() {
		t.Error("expected Available to be false")
	}
	_, err = m.Chat(context.Background(), nil)
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *backend.Error, got %v", err)
	}
}

func TestOpenAIBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("unexpected auth header %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	m, err := NewManager([]config.Backend{
		{Name: "oai", Kind: "openai", BaseURL: srv.URL, Model: "m", APIKey: "sekrit"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	got, err := m.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "ok" {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestMatchCandidate(t *testing.T) {
	candidates := []string{"Finance", "Projects 2023", "Misc"}
	cases := []struct {
		answer string
		want   string
		ok     bool
	}{
		{"Finance", "Finance", true},
		{"1. Finance", "Finance", true},
		{"- Projects 2023", "Projects 2023", true},
		{`"misc"`, "Misc", true},
		{"<think>hm</think>Finance", "Finance", true},
		{"Something else", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := MatchCandidate(tc.answer, candidates)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MatchCandidate(%q) = (%q, %v), want (%q, %v)", tc.answer, got, ok, tc.want, tc.ok)
		}
	}
}
