package extract

import (
	"strings"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate"
)

// PatternConfig names the POS tag classes used by the candidate rules.
// Noun tags match by prefix so subclassed tags (nr, ns, nt, nz) count as
// nouns; adjective and verb tags match exactly.
type PatternConfig struct {
	NounTags []string
	AdjTags  []string
	VerbTags []string
}

// DefaultPatternConfig covers the PKU tagset emitted by the annotation
// service.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		NounTags: []string{"n", "nr", "ns", "nt", "nz"},
		AdjTags:  []string{"a"},
		VerbTags: []string{"v"},
	}
}

// Maximum sliding-window n-gram length generated at every token position.
const maxNGramLen = 6

func (c PatternConfig) isNoun(tag string) bool {
	for _, t := range c.NounTags {
		if strings.HasPrefix(tag, t) {
			return true
		}
	}
	return false
}

func (c PatternConfig) isAdj(tag string) bool {
	for _, t := range c.AdjTags {
		if tag == t {
			return true
		}
	}
	return false
}

func (c PatternConfig) isVerb(tag string) bool {
	for _, t := range c.VerbTags {
		if tag == t {
			return true
		}
	}
	return false
}

// addCandidate normalizes a phrase (trim, lower-case) and records it unless
// empty after cleaning.
func addCandidate(set map[string]struct{}, phrase string) {
	cleaned := strings.ToLower(strings.TrimSpace(phrase))
	if cleaned == "" {
		return
	}
	set[cleaned] = struct{}{}
}

// sentenceCandidates applies the POS pattern rules and the sliding n-gram
// net to one sentence's parallel token/tag arrays, adding every normalized
// candidate phrase to set. The rules are additive; none excludes another at
// the same position.
func sentenceCandidates(tokens []string, tags []string, cfg PatternConfig, set map[string]struct{}) {
	n := len(tokens)
	if n == 0 || n != len(tags) {
		return
	}

	for i := 0; i < n; i++ {
		tag := tags[i]
		token := tokens[i]

		switch {
		case cfg.isNoun(tag):
			addCandidate(set, token)
			// noun bigram, extended to a trigram when a third noun follows
			if i+1 < n && cfg.isNoun(tags[i+1]) {
				bigram := token + tokens[i+1]
				addCandidate(set, bigram)
				if i+2 < n && cfg.isNoun(tags[i+2]) {
					addCandidate(set, bigram+tokens[i+2])
				}
			}
		case cfg.isAdj(tag) && i+1 < n && cfg.isNoun(tags[i+1]):
			addCandidate(set, token+tokens[i+1])
		case cfg.isVerb(tag) && i+1 < n && cfg.isNoun(tags[i+1]):
			addCandidate(set, token+tokens[i+1])
		}

		// broad recall net: every 1..6-gram starting here, regardless of tags
		for k := 0; k < maxNGramLen && i+k < n; k++ {
			addCandidate(set, strings.Join(tokens[i:i+k+1], ""))
		}
	}
}

// entityCandidates adds every named-entity surface text to the candidate
// pool, normalized the same way as POS candidates.
func entityCandidates(sentences [][]annotate.Entity, set map[string]struct{}) {
	for _, entities := range sentences {
		for _, entity := range entities {
			addCandidate(set, entity.Text)
		}
	}
}
