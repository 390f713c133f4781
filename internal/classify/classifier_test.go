package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/backend"
	"github.com/gyeh/filetriage/internal/config"
	"github.com/gyeh/filetriage/internal/model"
)

func mkTree(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func mkFile(t *testing.T, dir, name, content string) model.FileRecord {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	rec, err := model.NewFileRecord(path)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func testClassifier(t *testing.T, backends *backend.Manager) *Classifier {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return New(cfg, backends, zerolog.Nop())
}

func TestClassify_TemporalSkipsBackend(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "Misc"},
		})
	}))
	defer srv.Close()
	backends, err := backend.NewManager([]config.Backend{
		{Name: "b", Kind: "ollama", BaseURL: srv.URL, Model: "m"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	mkTree(t, root, "2022", "2023", "Misc")
	src := t.TempDir()
	rec := mkFile(t, src, "Annual_Report_2023.pdf", "binary-ish")

	c := testClassifier(t, backends)
	decision, _ := c.Classify(context.Background(), rec, root)

	if !decision.Success {
		t.Fatalf("expected success, reason: %s", decision.Reason)
	}
	if decision.RelPath != "2023" {
		t.Errorf("expected 2023, got %q", decision.RelPath)
	}
	if calls.Load() != 0 {
		t.Errorf("backend should not have been invoked, got %d calls", calls.Load())
	}
}

func TestClassify_RecursiveDescent(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "Finance/2023", "Finance/2022", "Projects")
	src := t.TempDir()
	rec := mkFile(t, src, "finance_review_2023.txt", "annual finance review")

	c := testClassifier(t, nil)
	decision, _ := c.Classify(context.Background(), rec, root)

	if !decision.Success {
		t.Fatalf("expected success, reason: %s", decision.Reason)
	}
	if got := filepath.ToSlash(decision.RelPath); got != "Finance/2023" {
		t.Errorf("expected Finance/2023, got %q", got)
	}
	if len(decision.LevelTags) != 2 {
		t.Errorf("expected 2 level tags, got %v", decision.LevelTags)
	}
	if !decision.Complete {
		t.Error("expected a complete decision at the leaf")
	}
}

func TestClassify_PartialPath(t *testing.T) {
	root := t.TempDir()
	// Level 1 matches by literal containment, level 2 has no match.
	mkTree(t, root, "Finance/Unrelated", "Finance/Other")
	src := t.TempDir()
	rec := mkFile(t, src, "finance_report.txt", "")

	c := testClassifier(t, nil)
	decision, _ := c.Classify(context.Background(), rec, root)

	if !decision.Success {
		t.Fatal("partial match should count as success")
	}
	if decision.Complete {
		t.Error("partial match must not be complete")
	}
	if decision.RelPath != "Finance" {
		t.Errorf("expected deepest matched prefix Finance, got %q", decision.RelPath)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "Alpha", "Beta")
	src := t.TempDir()
	rec := mkFile(t, src, "zzz.bin", "")

	c := testClassifier(t, nil)
	decision, _ := c.Classify(context.Background(), rec, root)

	if decision.Success {
		t.Errorf("expected failure, got path %q", decision.RelPath)
	}
	if decision.Reason == "" {
		t.Error("expected a failure reason")
	}
}

func TestClassify_ContentMatchViaBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []backend.Message `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		// First call summarizes, second call picks a candidate.
		reply := "a short summary"
		if len(req.Messages) > 1 && strings.Contains(req.Messages[1].Content, "Candidate directories") {
			reply = "Recipes"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": reply},
		})
	}))
	defer srv.Close()
	backends, err := backend.NewManager([]config.Backend{
		{Name: "b", Kind: "ollama", BaseURL: srv.URL, Model: "m"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	mkTree(t, root, "Recipes", "Taxes")
	src := t.TempDir()
	rec := mkFile(t, src, "dinner_ideas.txt", "slow cooker instructions with paprika")

	c := testClassifier(t, backends)
	decision, _ := c.Classify(context.Background(), rec, root)

	if !decision.Success || decision.RelPath != "Recipes" {
		t.Errorf("expected Recipes via content match, got %q (reason %s)", decision.RelPath, decision.Reason)
	}
}

func TestClassify_BackendDownStillMatchesHeuristically(t *testing.T) {
	backends, err := backend.NewManager([]config.Backend{
		{Name: "dead", Kind: "ollama", BaseURL: "http://127.0.0.1:1", Model: "m"},
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	mkTree(t, root, "Finance", "Other")
	src := t.TempDir()
	rec := mkFile(t, src, "finance_notes.txt", "text content here")

	c := testClassifier(t, backends)
	decision, _ := c.Classify(context.Background(), rec, root)

	if !decision.Success || decision.RelPath != "Finance" {
		t.Errorf("expected heuristic match despite dead backend, got %q", decision.RelPath)
	}
}
