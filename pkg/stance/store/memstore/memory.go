package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/stance/pkg/stance/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	models   map[modelKey]store.Model
	words    map[wordKey]store.Word
	runs     map[string]store.Run
	stoplist map[string]struct{}
}

type modelKey struct{ name, variant string }

type wordKey struct{ lemma, pos string }

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		models:   make(map[modelKey]store.Model),
		words:    make(map[wordKey]store.Word),
		runs:     make(map[string]store.Run),
		stoplist: make(map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveModel replaces the model stored under the same name and variant.
func (s *Store) SaveModel(ctx context.Context, m store.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models[modelKey{m.Name, m.Variant}] = copyModel(m)
	return nil
}

// LoadModel returns a stored model.
func (s *Store) LoadModel(ctx context.Context, name, variant string) (store.Model, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[modelKey{name, variant}]
	if !ok {
		return store.Model{}, false, nil
	}
	return copyModel(m), true, nil
}

// UpsertWords inserts or replaces words, keyed by lemma and class.
func (s *Store) UpsertWords(ctx context.Context, words []store.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range words {
		s.words[wordKey{w.Lemma, w.POS}] = w
	}
	return nil
}

// ReplaceWords drops every stored word and stores words.
func (s *Store) ReplaceWords(ctx context.Context, words []store.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[wordKey]store.Word, len(words))
	for _, w := range words {
		s.words[wordKey{w.Lemma, w.POS}] = w
	}
	return nil
}

// GetWord returns a stored word.
func (s *Store) GetWord(ctx context.Context, lemma, pos string) (store.Word, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.words[wordKey{lemma, pos}]
	return w, ok, nil
}

// TopWords returns the k words with the highest mark. k <= 0 returns all.
func (s *Store) TopWords(ctx context.Context, k int) ([]store.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Word, 0, len(s.words))
	for _, w := range s.words {
		out = append(out, w)
	}
	store.SortWords(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// SaveRun stores a run, assigning an ID when it has none.
func (s *Store) SaveRun(ctx context.Context, r store.Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.runs[r.ID] = r
	return r.ID, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertStoplist replaces the special word set.
func (s *Store) UpsertStoplist(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stoplist = make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		s.stoplist[tok] = struct{}{}
	}
	return nil
}

// Stoplist returns the special words, sorted.
func (s *Store) Stoplist(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.stoplist))
	for tok := range s.stoplist {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out, nil
}

func copyModel(m store.Model) store.Model {
	m.Entries = append([]store.Probability(nil), m.Entries...)
	return m
}

var _ store.Store = (*Store)(nil)
