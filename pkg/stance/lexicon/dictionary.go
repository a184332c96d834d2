package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Marked is a scored word of a dictionary.
type Marked struct {
	Identity lexeme.Identity
	Mark     float64
}

// Dictionary holds scored words, one mark per identity.
type Dictionary struct {
	marks map[lexeme.Identity]float64
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{marks: make(map[lexeme.Identity]float64)}
}

// Set records the mark of a word, replacing any previous one.
func (d *Dictionary) Set(id lexeme.Identity, mark float64) {
	d.marks[lexeme.NewIdentity(id.Lemma, id.POS)] = mark
}

// Mark returns the mark of a word.
func (d *Dictionary) Mark(id lexeme.Identity) (float64, bool) {
	m, ok := d.marks[id]
	return m, ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.marks) }

// Entries returns every word ordered by lemma, then class.
func (d *Dictionary) Entries() []Marked {
	out := make([]Marked, 0, len(d.marks))
	for id, m := range d.marks {
		out = append(out, Marked{Identity: id, Mark: m})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identity.Less(out[j].Identity)
	})
	return out
}

// Write emits the dictionary as "lemma\tPOS\tmark" lines.
func (d *Dictionary) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range d.Entries() {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n",
			e.Identity.Lemma, e.Identity.POS, strconv.FormatFloat(e.Mark, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes the dictionary to path.
func (d *Dictionary) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write dictionary %s: %w", path, err)
	}
	return f.Close()
}

// ReadDictionary parses "lemma\tPOS\tmark" lines. Malformed lines and lines
// with an unrecognised class are skipped.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	d := NewDictionary()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		if len(fields) != 3 {
			continue
		}
		pos := lexeme.ParsePOS(fields[1])
		if !pos.IsWord() || strings.TrimSpace(fields[0]) == "" {
			continue
		}
		mark, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			continue
		}
		d.Set(lexeme.Identity{Lemma: fields[0], POS: pos}, mark)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDictionary reads a dictionary file.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDictionary(f)
}
