package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/stance/pkg/stance/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSQLiteModelRoundTrip saves, replaces and reloads a model
func TestSQLiteModelRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	trained := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := store.Model{
		Name:          "default",
		Variant:       "multinomial",
		PositivePrior: 0.4,
		NegativePrior: 0.6,
		TrainedAt:     trained,
		Entries: []store.Probability{
			{Lemma: "waste", POS: "NN", Positive: 0.125, Negative: 0.25},
			{Lemma: "great", POS: "JJ", Positive: 0.25, Negative: 0.125},
		},
	}
	if err := st.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	got, found, err := st.LoadModel(ctx, "default", "multinomial")
	if err != nil || !found {
		t.Fatalf("LoadModel: found=%v err=%v", found, err)
	}
	if got.PositivePrior != 0.4 || got.NegativePrior != 0.6 {
		t.Errorf("unexpected priors: %+v", got)
	}
	if !got.TrainedAt.Equal(trained) {
		t.Errorf("expected trained_at %v, got %v", trained, got.TrainedAt)
	}
	if len(got.Entries) != 2 || got.Entries[0].Lemma != "great" {
		t.Errorf("expected entries ordered by lemma, got %v", got.Entries)
	}

	// Saving again replaces every entry
	m.Entries = m.Entries[:1]
	if err := st.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel (replace): %v", err)
	}
	got, _, err = st.LoadModel(ctx, "default", "multinomial")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Lemma != "waste" {
		t.Errorf("expected only 'waste' after replace, got %v", got.Entries)
	}

	if _, found, err := st.LoadModel(ctx, "other", "binary"); err != nil || found {
		t.Errorf("expected missing model, found=%v err=%v", found, err)
	}
}

func TestSQLiteWords(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	words := []store.Word{
		{Lemma: "plot", POS: "NN", PositiveFrequency: 3, NegativeFrequency: 4, PositiveDocs: 2, NegativeDocs: 3, PositiveRate: 0.1, NegativeRate: 0.2},
		{Lemma: "awful", POS: "JJ", NegativeFrequency: 9, NegativeDocs: 5, NegativeRate: 0.9},
		{Lemma: "great", POS: "JJ", PositiveFrequency: 7, PositiveDocs: 4, PositiveRate: 0.5},
	}
	if err := st.UpsertWords(ctx, words); err != nil {
		t.Fatalf("UpsertWords: %v", err)
	}

	w, found, err := st.GetWord(ctx, "plot", "NN")
	if err != nil || !found {
		t.Fatalf("GetWord: found=%v err=%v", found, err)
	}
	if w.PositiveFrequency != 3 || w.NegativeDocs != 3 || w.NegativeRate != 0.2 {
		t.Errorf("unexpected word: %+v", w)
	}

	top, err := st.TopWords(ctx, 0)
	if err != nil {
		t.Fatalf("TopWords: %v", err)
	}
	if len(top) != 3 || top[0].Lemma != "awful" || top[2].Lemma != "plot" {
		t.Errorf("expected [awful great plot], got %v", top)
	}

	if _, found, _ := st.GetWord(ctx, "plot", "VB"); found {
		t.Error("expected plot/VB to be missing")
	}
}

func TestSQLiteRuns(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	acc := 0.75
	first, err := st.SaveRun(ctx, store.Run{Model: "default", Fold: 0, Variant: "binary", TP: 3, TN: 3, FP: 1, FN: 1, Accuracy: &acc})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	second, err := st.SaveRun(ctx, store.Run{Model: "default", Fold: 1, Variant: "binary"})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if first == "" || second <= first {
		t.Errorf("expected increasing run IDs, got %q then %q", first, second)
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
	if runs[0].Accuracy != nil {
		t.Errorf("expected undefined accuracy to stay nil, got %v", *runs[0].Accuracy)
	}
	if runs[1].Accuracy == nil || *runs[1].Accuracy != 0.75 || runs[1].TP != 3 {
		t.Errorf("unexpected first run: %+v", runs[1])
	}
}

func TestSQLiteStoplist(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.UpsertStoplist(ctx, []string{"old"}); err != nil {
		t.Fatalf("UpsertStoplist: %v", err)
	}
	if err := st.UpsertStoplist(ctx, []string{"movie", "film", "film"}); err != nil {
		t.Fatalf("UpsertStoplist: %v", err)
	}

	stops, err := st.Stoplist(ctx)
	if err != nil {
		t.Fatalf("Stoplist: %v", err)
	}
	if len(stops) != 2 || stops[0] != "film" || stops[1] != "movie" {
		t.Errorf("expected [film movie], got %v", stops)
	}
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.UpsertStoplist(ctx, []string{"kept"}); err != nil {
		t.Fatalf("UpsertStoplist: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite (reopen): %v", err)
	}
	defer st.Close()

	stops, err := st.Stoplist(ctx)
	if err != nil || len(stops) != 1 || stops[0] != "kept" {
		t.Errorf("expected data to survive reopen, got %v (err=%v)", stops, err)
	}
}

// TestSQLiteModelRetrainOtherConnection replaces a model while the first
// pooled connection is busy, so the save runs on a fresh connection.
func TestSQLiteModelRetrainOtherConnection(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t).(*sqliteStore)

	held, err := st.db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer held.Close()

	var fk int
	if err := st.db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("Expected foreign keys on every connection, got %d", fk)
	}

	m := store.Model{
		Name:          "default",
		Variant:       "binary",
		PositivePrior: 0.5,
		NegativePrior: 0.5,
		Entries: []store.Probability{
			{Lemma: "great", POS: "JJ", Positive: 0.5, Negative: 0.25},
			{Lemma: "dull", POS: "JJ", Positive: 0.25, Negative: 0.5},
		},
	}
	if err := st.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}
	m.Entries = m.Entries[:1]
	if err := st.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel (retrain): %v", err)
	}

	got, found, err := st.LoadModel(ctx, "default", "binary")
	if err != nil || !found {
		t.Fatalf("LoadModel: found=%v err=%v", found, err)
	}
	if len(got.Entries) != 1 || got.Entries[0].Lemma != "great" {
		t.Errorf("Expected only 'great' after retrain, got %v", got.Entries)
	}
}

func TestSQLiteReplaceWords(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.UpsertWords(ctx, []store.Word{
		{Lemma: "plot", POS: "NN", PositiveRate: 0.1},
		{Lemma: "awful", POS: "JJ", NegativeRate: 0.9},
	}); err != nil {
		t.Fatalf("UpsertWords: %v", err)
	}
	if err := st.ReplaceWords(ctx, []store.Word{{Lemma: "great", POS: "JJ", PositiveRate: 0.5}}); err != nil {
		t.Fatalf("ReplaceWords: %v", err)
	}

	top, err := st.TopWords(ctx, 0)
	if err != nil {
		t.Fatalf("TopWords: %v", err)
	}
	if len(top) != 1 || top[0].Lemma != "great" {
		t.Errorf("Expected only [great], got %v", top)
	}
	if _, found, _ := st.GetWord(ctx, "awful", "JJ"); found {
		t.Error("Expected awful/JJ to be gone after replace")
	}
}
