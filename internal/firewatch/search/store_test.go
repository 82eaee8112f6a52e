package search

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

func TestCandidateStoreFoldDeduplicates(t *testing.T) {
	store := &CandidateStore{
		Log:  zap.NewNop(),
		Path: filepath.Join(t.TempDir(), "candidates.json"),
	}

	n, err := store.Fold([]model.Post{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}

	// 有重叠的第二批：总量只涨新增的
	n, err = store.Fold([]model.Post{{ID: "2", Text: "dup"}, {ID: "3", Text: "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("got %d, want 3", n)
	}

	posts, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}
	// 先到先得：id=2 保留第一批的内容
	if posts[1].ID != "2" || posts[1].Text != "b" {
		t.Errorf("got %+v", posts[1])
	}
}

func TestCandidateStoreFoldIdempotent(t *testing.T) {
	store := &CandidateStore{
		Log:  zap.NewNop(),
		Path: filepath.Join(t.TempDir(), "candidates.json"),
	}
	batch := []model.Post{{ID: "1"}, {ID: "2"}}
	for i := 0; i < 3; i++ {
		n, err := store.Fold(batch)
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Fatalf("fold %d: got %d, want 2", i, n)
		}
	}
}

func TestCandidateStoreLoadMissingFile(t *testing.T) {
	store := &CandidateStore{
		Log:  zap.NewNop(),
		Path: filepath.Join(t.TempDir(), "missing.json"),
	}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for missing candidate file")
	}
}

func TestClean(t *testing.T) {
	now := time.Date(2025, 7, 29, 0, 0, 0, 0, time.UTC)
	posts := []model.Post{
		{ID: "1", Type: "tweet", CreatedAt: "Mon Jul 28 14:45:00 +0000 2025"},
		{ID: "2", Type: "tweet", CreatedAt: "Mon Jul 21 14:45:00 +0000 2025"}, // 窗口外
		{ID: "3", Type: "ad", CreatedAt: "Mon Jul 28 14:45:00 +0000 2025"},    // 非推文
		{ID: "4", Type: "tweet", CreatedAt: "garbage"},                        // 日期坏
		{ID: "5", CreatedAt: "2025-07-28T20:00:00Z"},                          // 老数据无 type
	}
	out := Clean(zap.NewNop(), posts, now, 72)
	if len(out) != 2 {
		t.Fatalf("got %d posts, want 2", len(out))
	}
	if out[0].ID != "1" || out[1].ID != "5" {
		t.Errorf("got %v", out)
	}
}
