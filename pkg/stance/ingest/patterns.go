package ingest

import (
	"github.com/cognicore/stance/pkg/stance/lexeme"
)

// Phrase is a pair of adjacent tokens whose tags form an opinion pattern.
type Phrase struct {
	First  lexeme.Token
	Second lexeme.Token
}

func (p Phrase) String() string {
	return p.First.Lemma + " " + p.Second.Lemma
}

// Patterns returns the adjacent token pairs of each sentence that match
// one of the opinion patterns:
//
//	JJ   + NN|NNS
//	RB*  + JJ
//	JJ   + JJ
//	NN|NNS + JJ
//	RB*  + VB|VBD|VBN|VBG
//
// Tags are compared exactly on the unfiltered tagger output.
func (p *Pipeline) Patterns(text string) ([]Phrase, error) {
	tagged, err := p.tag(text)
	if err != nil {
		return nil, err
	}
	var out []Phrase
	for _, sentence := range tagged {
		for i := 0; i+1 < len(sentence); i++ {
			if MatchesPattern(sentence[i].Tag, sentence[i+1].Tag) {
				out = append(out, Phrase{First: sentence[i], Second: sentence[i+1]})
			}
		}
	}
	return out, nil
}

// MatchesPattern reports whether two adjacent tags form an opinion pattern.
func MatchesPattern(first, second string) bool {
	switch {
	case first == "JJ" && isNoun(second):
		return true
	case isAdverb(first) && second == "JJ":
		return true
	case first == "JJ" && second == "JJ":
		return true
	case isNoun(first) && second == "JJ":
		return true
	case isAdverb(first):
		switch second {
		case "VB", "VBD", "VBN", "VBG":
			return true
		}
	}
	return false
}

func isNoun(tag string) bool {
	return tag == "NN" || tag == "NNS"
}

func isAdverb(tag string) bool {
	return tag == "RB" || tag == "RBR" || tag == "RBS"
}
