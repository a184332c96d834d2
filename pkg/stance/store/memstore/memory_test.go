package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/stance/pkg/stance/store"
)

func TestModel_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := store.Model{
		Name:          "default",
		Variant:       "binary",
		PositivePrior: 0.5,
		NegativePrior: 0.5,
		Entries: []store.Probability{
			{Lemma: "great", POS: "JJ", Positive: 0.25, Negative: 0.125},
		},
	}
	if err := s.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	// Mutating the caller's slice must not affect the stored copy.
	m.Entries[0].Positive = 1

	got, found, err := s.LoadModel(ctx, "default", "binary")
	if err != nil || !found {
		t.Fatalf("LoadModel: found=%v err=%v", found, err)
	}
	if got.Entries[0].Positive != 0.25 {
		t.Errorf("expected stored probability 0.25, got %v", got.Entries[0].Positive)
	}

	if _, found, _ := s.LoadModel(ctx, "default", "multinomial"); found {
		t.Error("expected other variant to be missing")
	}
}

func TestWords_TopByMark(t *testing.T) {
	ctx := context.Background()
	s := New()

	words := []store.Word{
		{Lemma: "plot", POS: "NN", PositiveRate: 0.1, NegativeRate: 0.1},
		{Lemma: "awful", POS: "JJ", PositiveRate: 0.0, NegativeRate: 0.8},
		{Lemma: "great", POS: "JJ", PositiveRate: 0.6, NegativeRate: 0.0},
	}
	if err := s.UpsertWords(ctx, words); err != nil {
		t.Fatalf("UpsertWords: %v", err)
	}

	top, err := s.TopWords(ctx, 2)
	if err != nil {
		t.Fatalf("TopWords: %v", err)
	}
	if len(top) != 2 || top[0].Lemma != "awful" || top[1].Lemma != "great" {
		t.Errorf("expected [awful great], got %v", top)
	}

	// Upsert replaces
	if err := s.UpsertWords(ctx, []store.Word{{Lemma: "plot", POS: "NN", PositiveRate: 2}}); err != nil {
		t.Fatalf("UpsertWords: %v", err)
	}
	w, found, _ := s.GetWord(ctx, "plot", "NN")
	if !found || w.Mark() != 1 {
		t.Errorf("expected replaced word with mark 1, got %+v (found=%v)", w, found)
	}
}

func TestRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	var ids []string
	for fold := 0; fold < 3; fold++ {
		id, err := s.SaveRun(ctx, store.Run{Model: "default", Fold: fold, Variant: "binary"})
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[0].Fold != 2 {
		t.Errorf("expected newest run first, got %+v", runs[0])
	}
	if runs[0].CreatedAt.IsZero() {
		t.Error("expected creation time to be set")
	}
}

func TestStoplist_ReplacesClearsOld(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.UpsertStoplist(ctx, []string{"old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertStoplist(ctx, []string{"zebra", "apple"}); err != nil {
		t.Fatal(err)
	}

	stops, err := s.Stoplist(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stops) != 2 || stops[0] != "apple" || stops[1] != "zebra" {
		t.Errorf("expected sorted [apple zebra], got %v", stops)
	}
}

func TestWords_ReplaceDropsOld(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.UpsertWords(ctx, []store.Word{
		{Lemma: "plot", POS: "NN", PositiveRate: 0.1},
		{Lemma: "awful", POS: "JJ", NegativeRate: 0.8},
	}); err != nil {
		t.Fatalf("UpsertWords: %v", err)
	}
	if err := s.ReplaceWords(ctx, []store.Word{{Lemma: "great", POS: "JJ", PositiveRate: 0.6}}); err != nil {
		t.Fatalf("ReplaceWords: %v", err)
	}

	top, _ := s.TopWords(ctx, 0)
	if len(top) != 1 || top[0].Lemma != "great" {
		t.Errorf("Expected only [great], got %v", top)
	}
}
