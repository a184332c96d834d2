package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/stance/pkg/stance/internalerr"
	"github.com/cognicore/stance/pkg/stance/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// dsn applies per-connection pragmas. A PRAGMA run through db.Exec only
// reaches one pooled connection.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS models (
	name TEXT NOT NULL,
	variant TEXT NOT NULL,
	positive_prior REAL NOT NULL,
	negative_prior REAL NOT NULL,
	trained_at TEXT,
	PRIMARY KEY(name, variant)
);

CREATE TABLE IF NOT EXISTS model_entries (
	name TEXT NOT NULL,
	variant TEXT NOT NULL,
	lemma TEXT NOT NULL,
	pos TEXT NOT NULL,
	positive REAL NOT NULL,
	negative REAL NOT NULL,
	PRIMARY KEY(name, variant, lemma, pos),
	FOREIGN KEY(name, variant) REFERENCES models(name, variant) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS words (
	lemma TEXT NOT NULL,
	pos TEXT NOT NULL,
	positive_frequency INTEGER NOT NULL,
	negative_frequency INTEGER NOT NULL,
	positive_docs INTEGER NOT NULL,
	negative_docs INTEGER NOT NULL,
	positive_rate REAL NOT NULL,
	negative_rate REAL NOT NULL,
	mark REAL NOT NULL,
	PRIMARY KEY(lemma, pos)
);

CREATE INDEX IF NOT EXISTS idx_words_mark ON words(mark DESC);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	model TEXT NOT NULL,
	fold INTEGER NOT NULL,
	variant TEXT NOT NULL,
	tp INTEGER NOT NULL,
	tn INTEGER NOT NULL,
	fp INTEGER NOT NULL,
	fn INTEGER NOT NULL,
	accuracy REAL,
	precision REAL,
	recall REAL,
	f_measure REAL
);

CREATE TABLE IF NOT EXISTS stoplist (
	token TEXT PRIMARY KEY
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveModel replaces the model stored under the same name and variant in a
// single transaction.
func (s *sqliteStore) SaveModel(ctx context.Context, m store.Model) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM model_entries WHERE name = ? AND variant = ?`, m.Name, m.Variant); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM models WHERE name = ? AND variant = ?`, m.Name, m.Variant); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO models (name, variant, positive_prior, negative_prior, trained_at)
VALUES (?, ?, ?, ?, ?)
`, m.Name, m.Variant, m.PositivePrior, m.NegativePrior, formatTime(m.TrainedAt))
	if err != nil {
		return err
	}

	if len(m.Entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO model_entries (name, variant, lemma, pos, positive, negative)
VALUES (?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range m.Entries {
			if _, err := stmt.ExecContext(ctx, m.Name, m.Variant, e.Lemma, e.POS, e.Positive, e.Negative); err != nil {
				return fmt.Errorf("insert %s/%s: %w", e.Lemma, e.POS, err)
			}
		}
	}

	return tx.Commit()
}

// LoadModel retrieves a stored model
func (s *sqliteStore) LoadModel(ctx context.Context, name, variant string) (store.Model, bool, error) {
	m := store.Model{Name: name, Variant: variant}
	var trained sql.NullString
	err := s.db.QueryRowContext(ctx, `
SELECT positive_prior, negative_prior, trained_at
FROM models
WHERE name = ? AND variant = ?
`, name, variant).Scan(&m.PositivePrior, &m.NegativePrior, &trained)
	if err == sql.ErrNoRows {
		return store.Model{}, false, nil
	}
	if err != nil {
		return store.Model{}, false, err
	}
	m.TrainedAt = parseTime(trained.String)

	rows, err := s.db.QueryContext(ctx, `
SELECT lemma, pos, positive, negative
FROM model_entries
WHERE name = ? AND variant = ?
ORDER BY lemma, pos
`, name, variant)
	if err != nil {
		return store.Model{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var e store.Probability
		if err := rows.Scan(&e.Lemma, &e.POS, &e.Positive, &e.Negative); err != nil {
			return store.Model{}, false, err
		}
		m.Entries = append(m.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return store.Model{}, false, err
	}
	return m, true, nil
}

// UpsertWords inserts or replaces words in a single transaction.
func (s *sqliteStore) UpsertWords(ctx context.Context, words []store.Word) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertWords(ctx, tx, words); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceWords clears the words table and writes words in one transaction.
func (s *sqliteStore) ReplaceWords(ctx context.Context, words []store.Word) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return err
	}
	if err := upsertWords(ctx, tx, words); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertWords(ctx context.Context, tx *sql.Tx, words []store.Word) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO words (lemma, pos, positive_frequency, negative_frequency,
	positive_docs, negative_docs, positive_rate, negative_rate, mark)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(lemma, pos) DO UPDATE SET
	positive_frequency=excluded.positive_frequency,
	negative_frequency=excluded.negative_frequency,
	positive_docs=excluded.positive_docs,
	negative_docs=excluded.negative_docs,
	positive_rate=excluded.positive_rate,
	negative_rate=excluded.negative_rate,
	mark=excluded.mark
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range words {
		_, err := stmt.ExecContext(ctx, w.Lemma, w.POS,
			w.PositiveFrequency, w.NegativeFrequency,
			w.PositiveDocs, w.NegativeDocs,
			w.PositiveRate, w.NegativeRate, w.Mark())
		if err != nil {
			return fmt.Errorf("upsert %s/%s: %w", w.Lemma, w.POS, err)
		}
	}
	return nil
}

const wordColumns = `lemma, pos, positive_frequency, negative_frequency,
	positive_docs, negative_docs, positive_rate, negative_rate`

type scanner interface {
	Scan(dest ...any) error
}

func scanWord(row scanner) (store.Word, error) {
	var w store.Word
	err := row.Scan(&w.Lemma, &w.POS, &w.PositiveFrequency, &w.NegativeFrequency,
		&w.PositiveDocs, &w.NegativeDocs, &w.PositiveRate, &w.NegativeRate)
	return w, err
}

// GetWord retrieves a word by lemma and class
func (s *sqliteStore) GetWord(ctx context.Context, lemma, pos string) (store.Word, bool, error) {
	w, err := scanWord(s.db.QueryRowContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE lemma = ? AND pos = ?`, lemma, pos))
	if err == sql.ErrNoRows {
		return store.Word{}, false, nil
	}
	if err != nil {
		return store.Word{}, false, err
	}
	return w, true, nil
}

// TopWords returns the k words with the highest mark. k <= 0 returns all.
func (s *sqliteStore) TopWords(ctx context.Context, k int) ([]store.Word, error) {
	if k <= 0 {
		k = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+wordColumns+`
FROM words
ORDER BY mark DESC, lemma, pos
LIMIT ?
`, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveRun stores an evaluation run, assigning an ID when it has none.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) (string, error) {
	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, model, fold, variant, tp, tn, fp, fn,
	accuracy, precision, recall, f_measure)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, r.ID, formatTime(r.CreatedAt), r.Model, r.Fold, r.Variant,
		r.TP, r.TN, r.FP, r.FN,
		nullable(r.Accuracy), nullable(r.Precision), nullable(r.Recall), nullable(r.F))
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, model, fold, variant, tp, tn, fp, fn,
	accuracy, precision, recall, f_measure
FROM runs
ORDER BY id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		var (
			r                      store.Run
			created                string
			acc, prec, recall, fms sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &created, &r.Model, &r.Fold, &r.Variant,
			&r.TP, &r.TN, &r.FP, &r.FN, &acc, &prec, &recall, &fms); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(created)
		r.Accuracy = fromNull(acc)
		r.Precision = fromNull(prec)
		r.Recall = fromNull(recall)
		r.F = fromNull(fms)
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertStoplist replaces the special word set in a single transaction.
func (s *sqliteStore) UpsertStoplist(ctx context.Context, tokens []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stoplist`); err != nil {
		return err
	}

	if len(tokens) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stoplist (token) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, tok := range tokens {
			if _, err := stmt.ExecContext(ctx, tok); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Stoplist returns the special words, sorted.
func (s *sqliteStore) Stoplist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM stoplist ORDER BY token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
