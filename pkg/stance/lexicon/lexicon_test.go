package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/stance/pkg/stance/internalerr"
)

func TestLexiconNew(t *testing.T) {
	lex := New()
	if lex == nil {
		t.Fatal("New() returned nil")
	}
	if stats := lex.Stats(); stats.Lemmas != 0 {
		t.Errorf("New lexicon should have 0 lemmas, got %d", stats.Lemmas)
	}
}

func TestLexiconAddEntry(t *testing.T) {
	lex := New()
	lex.AddEntry("Be", "vb", []string{"is", "Was", "were", "is"})

	e, ok := lex.Lookup("WAS")
	if !ok {
		t.Fatal("Expected 'was' to be found")
	}
	if e.Lemma != "be" || e.Tag != "VB" {
		t.Errorf("Expected be/VB, got %s/%s", e.Lemma, e.Tag)
	}

	if got := lex.Normalize("were"); got != "be" {
		t.Errorf("Normalize('were') = %q, want 'be'", got)
	}
	if got := lex.Normalize("film"); got != "film" {
		t.Errorf("Normalize('film') = %q, want 'film'", got)
	}

	forms := lex.Forms("is")
	if len(forms) != 4 || forms[0] != "be" {
		t.Errorf("Forms('is') = %v, want lemma first and 4 forms", forms)
	}
}

func TestLexiconReplaceEntry(t *testing.T) {
	lex := New()
	lex.AddEntry("good", "JJ", []string{"better", "best"})
	lex.AddEntry("good", "JJ", []string{"goodest"})

	if _, ok := lex.Lookup("better"); ok {
		t.Error("Expected stale form 'better' to be removed")
	}
	if got := lex.Normalize("goodest"); got != "good" {
		t.Errorf("Normalize('goodest') = %q, want 'good'", got)
	}
}

func TestLexiconLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `entries:
  - lemma: be
    tag: VB
    forms: [is, was, were]
  - lemma: child
    tag: NN
    forms: [children]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}

	if got := lex.Normalize("children"); got != "child" {
		t.Errorf("Normalize('children') = %q, want 'child'", got)
	}
	stats := lex.Stats()
	if stats.Lemmas != 2 || stats.Forms != 6 {
		t.Errorf("Expected 2 lemmas and 6 forms, got %+v", stats)
	}
	lemmas := lex.Lemmas()
	if len(lemmas) != 2 || lemmas[0] != "be" || lemmas[1] != "child" {
		t.Errorf("Lemmas() = %v, want [be child]", lemmas)
	}
}

func TestLexiconLoadFromYAMLEmptyLemma(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("entries:\n  - tag: NN\n    forms: [x]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromYAML(path)
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestLexiconLoadFromYAMLMissingFile(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
