package dedupe

import (
	"testing"

	"fire-watch/internal/firewatch/model"
)

func post(id, text string) model.Post {
	return model.Post{ID: id, Text: text}
}

func TestDedupeFirstSeenWins(t *testing.T) {
	in := []model.Post{
		post("1", "first"),
		post("2", "second"),
		post("1", "duplicate of first"),
		post("3", "third"),
		post("2", "duplicate of second"),
	}
	out := Dedupe(in)

	if len(out) != 3 {
		t.Fatalf("got %d posts, want 3", len(out))
	}
	wantOrder := []string{"1", "2", "3"}
	for i, id := range wantOrder {
		if out[i].ID != id {
			t.Errorf("out[%d].ID = %q, want %q", i, out[i].ID, id)
		}
	}
	if out[0].Text != "first" {
		t.Errorf("first occurrence should win, got %q", out[0].Text)
	}
}

func TestDedupeDropsEmptyIDs(t *testing.T) {
	in := []model.Post{post("", "no id"), post("1", "ok"), post("", "also no id")}
	out := Dedupe(in)
	if len(out) != 1 || out[0].ID != "1" {
		t.Fatalf("got %v", out)
	}
}

func TestDedupeNeverGrows(t *testing.T) {
	in := []model.Post{post("a", ""), post("b", ""), post("a", ""), post("c", "")}
	out := Dedupe(in)
	if len(out) > len(in) {
		t.Fatalf("output larger than input: %d > %d", len(out), len(in))
	}
	seen := map[string]int{}
	for _, p := range out {
		seen[p.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %q appears %d times", id, n)
		}
	}
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	in := []model.Post{post("1", "a"), post("1", "b"), post("2", "c")}
	Dedupe(in)
	if in[0].ID != "1" || in[1].Text != "b" || in[2].ID != "2" {
		t.Error("input slice was mutated")
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Errorf("got %v", out)
	}
}
