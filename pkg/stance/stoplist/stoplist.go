package stoplist

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"github.com/bbalet/stopwords"
)

// Source names the list a special word came from.
type Source string

const (
	SourceStop      Source = "stop"
	SourceKernel    Source = "kernel"
	SourcePeriphery Source = "periphery"
	SourceDerived   Source = "derived"
)

// Manager holds the set of words removed before training.
type Manager struct {
	stops   map[string]Reason
	builtin string // language code for built-in stop words, "" disables
}

// Reason explains why a word is in the list
type Reason struct {
	Source       Source
	HighDF       bool    // appears in a large share of documents
	Even         bool    // evenly split between the two classes
	DFPercent    float64 // share of documents containing the word
	ClassEntropy float64 // entropy of the positive/negative split, in bits
}

// NewManager creates a manager from an initial stop word list
func NewManager(initialStops []string) *Manager {
	m := &Manager{stops: make(map[string]Reason, len(initialStops))}
	m.AddAll(initialStops, SourceStop)
	return m
}

// UseBuiltin enables the built-in stop word list for a language code
// ("en", "fr", ...). An empty code disables it.
func (m *Manager) UseBuiltin(lang string) {
	m.builtin = strings.ToLower(strings.TrimSpace(lang))
}

// IsStop checks if a word is a special word
func (m *Manager) IsStop(word string) bool {
	word = strings.ToLower(word)
	if _, ok := m.stops[word]; ok {
		return true
	}
	if m.builtin == "" || word == "" {
		return false
	}
	// CleanString drops stop words and keeps everything else.
	return strings.TrimSpace(stopwords.CleanString(word, m.builtin, false)) == ""
}

// Add adds a word to the list with a reason
func (m *Manager) Add(word string, reason Reason) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	m.stops[word] = reason
}

// AddAll adds every word of a list, attributed to source.
func (m *Manager) AddAll(words []string, source Source) {
	for _, w := range words {
		m.Add(w, Reason{Source: source})
	}
}

// Remove removes a word from the list
func (m *Manager) Remove(word string) {
	delete(m.stops, strings.ToLower(word))
}

// Reason returns why a word is listed.
func (m *Manager) Reason(word string) (Reason, bool) {
	r, ok := m.stops[strings.ToLower(word)]
	return r, ok
}

// All returns all listed words, sorted. Built-in words are not included.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of listed words.
func (m *Manager) Len() int { return len(m.stops) }

// LoadList reads a plain-text word list: one term per line, blank lines and
// lines starting with '#' ignored.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// Stats holds statistics for candidate evaluation
type Stats struct {
	Token        string
	DF           int64
	DFPercent    float64
	Frequency    int64
	ClassEntropy float64
}

// Candidate represents a candidate special word
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64 // confidence score
}

// Thresholds defines criteria for non-discriminative word identification
type Thresholds struct {
	DFPercent    float64 // e.g., 50% - appears in half of the documents
	ClassEntropy float64 // e.g., 0.95 - close to an even class split
	MinFrequency int64   // ignore words rarer than this
}

// DefaultThresholds returns sensible default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent:    50.0,
		ClassEntropy: 0.95,
		MinFrequency: 5,
	}
}

// SuggestCandidates suggests words that are frequent across documents and
// split evenly between the classes, sorted by descending score.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	var candidates []Candidate

	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue // already listed
		}
		if s.Frequency < thresholds.MinFrequency {
			continue
		}

		reason := Reason{
			Source:       SourceDerived,
			HighDF:       s.DFPercent > thresholds.DFPercent,
			Even:         s.ClassEntropy > thresholds.ClassEntropy,
			DFPercent:    s.DFPercent,
			ClassEntropy: s.ClassEntropy,
		}
		if !reason.HighDF || !reason.Even {
			continue
		}

		candidates = append(candidates, Candidate{
			Token:  s.Token,
			Reason: reason,
			Score:  (s.DFPercent/100.0 + s.ClassEntropy) / 2.0,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Token < candidates[j].Token
	})
	return candidates
}

// Apply adds every candidate to the list.
func (m *Manager) Apply(candidates []Candidate) {
	for _, c := range candidates {
		m.Add(c.Token, c.Reason)
	}
}
