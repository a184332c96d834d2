package config

import (
	"fmt"

	"github.com/cognicore/stance/pkg/stance/ingest"
	"github.com/cognicore/stance/pkg/stance/lexeme"
	"github.com/cognicore/stance/pkg/stance/lexicon"
	"github.com/cognicore/stance/pkg/stance/stoplist"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	StopWordsPath    string
	KernelPath       string
	PeripheryPath    string
	LexiconPath      string
	BuiltinStopwords string
	Classes          []lexeme.POS
	StripHTML        bool
}

// Components holds all loaded configuration components
type Components struct {
	Pipeline *ingest.Pipeline
	Stoplist *stoplist.Manager
	Lexicon  *lexicon.Lexicon
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load lexicon
	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexicon.New()
	}

	// Load special word lists
	comp.Stoplist = stoplist.NewManager(nil)
	comp.Stoplist.UseBuiltin(l.BuiltinStopwords)
	lists := []struct {
		path   string
		source stoplist.Source
	}{
		{l.StopWordsPath, stoplist.SourceStop},
		{l.KernelPath, stoplist.SourceKernel},
		{l.PeripheryPath, stoplist.SourcePeriphery},
	}
	for _, list := range lists {
		if list.path == "" {
			continue
		}
		words, err := stoplist.LoadList(list.path)
		if err != nil {
			return nil, fmt.Errorf("load %s list: %w", list.source, err)
		}
		comp.Stoplist.AddAll(words, list.source)
	}

	// Build pipeline
	tagger, err := ingest.NewSimpleTagger(comp.Lexicon)
	if err != nil {
		return nil, fmt.Errorf("build tagger: %w", err)
	}
	comp.Pipeline = ingest.NewPipeline(tagger,
		ingest.WithClasses(l.Classes...),
		ingest.WithHTMLStripping(l.StripHTML),
	)

	return comp, nil
}
