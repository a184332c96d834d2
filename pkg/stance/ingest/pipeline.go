package ingest

import (
	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Pipeline orchestrates the analysis flow:
// text → HTML stripping → tagging → word filtering
type Pipeline struct {
	tagger    Tagger
	classes   map[lexeme.POS]bool // nil keeps every word class
	stripHTML bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClasses keeps only words of the given classes.
func WithClasses(classes ...lexeme.POS) Option {
	return func(p *Pipeline) {
		if len(classes) == 0 {
			p.classes = nil
			return
		}
		p.classes = make(map[lexeme.POS]bool, len(classes))
		for _, c := range classes {
			p.classes[c] = true
		}
	}
}

// WithHTMLStripping removes markup before tagging.
func WithHTMLStripping(enabled bool) Option {
	return func(p *Pipeline) {
		p.stripHTML = enabled
	}
}

// NewPipeline creates an analysis pipeline around a tagger.
func NewPipeline(tagger Tagger, opts ...Option) *Pipeline {
	p := &Pipeline{tagger: tagger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze returns the words of text that take part in word statistics:
// numerals, punctuation and closed-class tokens are dropped.
func (p *Pipeline) Analyze(text string) ([]lexeme.Token, error) {
	sentences, err := p.Sentences(text)
	if err != nil {
		return nil, err
	}
	var out []lexeme.Token
	for _, s := range sentences {
		out = append(out, s...)
	}
	return out, nil
}

// Sentences is Analyze with sentence boundaries kept. Sentences left empty
// by filtering are omitted.
func (p *Pipeline) Sentences(text string) ([][]lexeme.Token, error) {
	tagged, err := p.tag(text)
	if err != nil {
		return nil, err
	}
	var out [][]lexeme.Token
	for _, sentence := range tagged {
		var kept []lexeme.Token
		for _, tok := range sentence {
			if p.keep(tok) {
				kept = append(kept, tok)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out, nil
}

func (p *Pipeline) tag(text string) ([][]lexeme.Token, error) {
	if p.stripHTML {
		text = StripHTML(text)
	}
	return p.tagger.Tag(text)
}

func (p *Pipeline) keep(tok lexeme.Token) bool {
	if !tok.IsWord() {
		return false
	}
	return p.classes == nil || p.classes[tok.POS()]
}
