package resultstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/filetriage/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "results.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func entry(name, target string) model.ResultEntry {
	return model.ResultEntry{
		FileName:   name,
		TargetPath: target,
		Status:     model.StatusMigrated,
	}
}

func TestAppend_And_Load(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(entry("a.txt", "/t/a.txt")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(entry("b.txt", "/t/b.txt")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].FileName != "a.txt" || got[1].FileName != "b.txt" {
		t.Errorf("append order not preserved: %v, %v", got[0].FileName, got[1].FileName)
	}
}

func TestAppend_DuplicateIsNoOpSuccess(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(entry("a.txt", "/t/a.txt")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(entry("a.txt", "/t/a.txt")); err != nil {
		t.Fatalf("duplicate append should succeed: %v", err)
	}

	got, _ := s.Load()
	if len(got) != 1 {
		t.Errorf("expected duplicate to collapse, got %d entries", len(got))
	}
}

func TestAppend_SameNameDifferentTarget(t *testing.T) {
	s := newTestStore(t)
	s.Append(entry("a.txt", "/t1/a.txt"))
	s.Append(entry("a.txt", "/t2/a.txt"))

	got, _ := s.Load()
	if len(got) != 2 {
		t.Errorf("distinct targets must not dedup, got %d entries", len(got))
	}
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	s := newTestStore(t)

	const workers = 8
	const perWorker = 10
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := fmt.Sprintf("w%d-f%d.txt", w, i)
				if err := s.Append(entry(name, "/t/"+name)); err != nil {
					t.Errorf("Append: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != workers*perWorker {
		t.Errorf("expected %d entries, got %d", workers*perWorker, len(got))
	}
}

func TestAppend_RefusesCorruptStore(t *testing.T) {
	s := newTestStore(t)
	os.WriteFile(s.Path(), []byte("{definitely not an array"), 0644)

	err := s.Append(entry("a.txt", "/t/a.txt"))
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	// The corrupt document must be left untouched for manual inspection.
	data, _ := os.ReadFile(s.Path())
	if string(data) != "{definitely not an array" {
		t.Error("corrupt store was modified")
	}
}

func TestStore_AlwaysParseableOnDisk(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		s.Append(entry(fmt.Sprintf("f%d.txt", i), fmt.Sprintf("/t/f%d.txt", i)))
		data, err := os.ReadFile(s.Path())
		if err != nil {
			t.Fatalf("read store: %v", err)
		}
		var parsed []model.ResultEntry
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("store not parseable after append %d: %v", i, err)
		}
	}
}

func TestAppendBatch(t *testing.T) {
	s := newTestStore(t)
	s.Append(entry("a.txt", "/t/a.txt"))

	added, err := s.AppendBatch([]model.ResultEntry{
		entry("a.txt", "/t/a.txt"), // duplicate
		entry("b.txt", "/t/b.txt"),
		entry("c.txt", "/t/c.txt"),
	})
	if err != nil {
		t.Fatalf("AppendBatch: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}
}

func TestStat(t *testing.T) {
	s := newTestStore(t)
	e1 := entry("a.txt", "/t/a.txt")
	e1.FileMeta = model.FileRecord{Extension: ".txt", Size: 100}
	e2 := entry("b.pdf", "/t/b.pdf")
	e2.FileMeta = model.FileRecord{Extension: ".pdf", Size: 50}
	e2.Status = model.StatusClassifyFailed
	s.Append(e1)
	s.Append(e2)

	st, err := s.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Total != 2 || st.TotalBytes != 150 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.ByStatus[model.StatusMigrated] != 1 || st.ByStatus[model.StatusClassifyFailed] != 1 {
		t.Errorf("unexpected status counts: %+v", st.ByStatus)
	}
	if st.ByExt[".txt"] != 1 || st.ByExt[".pdf"] != 1 {
		t.Errorf("unexpected extension counts: %+v", st.ByExt)
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty store, got %d entries", len(got))
	}
}
