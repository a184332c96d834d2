package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// delimiter matches the line that starts each document in a class file.
var delimiter = regexp.MustCompile(`^\s*Document Number:\s*[0-9]+\s*$`)

const maxLineSize = 4 * 1024 * 1024

// Analyzer turns raw text into lexical tokens. ingest.Pipeline satisfies it.
type Analyzer interface {
	Analyze(text string) ([]lexeme.Token, error)
}

// ReadDocuments splits a class file into document texts. A document runs
// from one "Document Number: N" line to the next or to end of input.
// Blank segments are skipped.
func ReadDocuments(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		docs    []string
		current strings.Builder
	)
	flush := func() {
		text := current.String()
		if strings.TrimSpace(text) != "" {
			docs = append(docs, text)
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if delimiter.MatchString(line) {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return docs, nil
}

type pending struct {
	text   string
	tokens []lexeme.Token
}

// analyzeFile reads and tokenizes every document of a file without touching
// any corpus.
func analyzeFile(a Analyzer, path string) ([]pending, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	texts, err := ReadDocuments(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out := make([]pending, 0, len(texts))
	for i, text := range texts {
		tokens, err := a.Analyze(text)
		if err != nil {
			return nil, fmt.Errorf("analyze %s document %d: %w", path, i+1, err)
		}
		out = append(out, pending{text: text, tokens: tokens})
	}
	return out, nil
}

// LoadFile adds every document of a class file to the corpus and rebuilds
// the corpus-wide records. On error the corpus is left unchanged.
func (c *Corpus) LoadFile(a Analyzer, path string, label lexeme.Label) (int, error) {
	if label != lexeme.Positive && label != lexeme.Negative {
		return 0, fmt.Errorf("load %s: %w", path, ErrInvalidLabel)
	}
	docs, err := analyzeFile(a, path)
	if err != nil {
		return 0, err
	}
	for _, p := range docs {
		// label already validated
		_, _ = c.Add(label, p.text, p.tokens)
	}
	c.Build()
	return len(docs), nil
}

// Load reads the positive and negative class files into a new corpus.
// Both files are fully analysed before anything is added, so an error in
// either leaves no partial corpus behind.
func Load(a Analyzer, positivePath, negativePath string) (*Corpus, error) {
	pos, err := analyzeFile(a, positivePath)
	if err != nil {
		return nil, fmt.Errorf("load positive corpus: %w", err)
	}
	neg, err := analyzeFile(a, negativePath)
	if err != nil {
		return nil, fmt.Errorf("load negative corpus: %w", err)
	}

	c := New()
	for _, p := range pos {
		_, _ = c.Add(lexeme.Positive, p.text, p.tokens)
	}
	for _, p := range neg {
		_, _ = c.Add(lexeme.Negative, p.text, p.tokens)
	}
	c.Build()
	return c, nil
}
