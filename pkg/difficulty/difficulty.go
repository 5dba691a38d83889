package difficulty

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
)

// Signal weights of the scoring model.
const (
	WeightTermDensity       = 0.30
	WeightFormulaComplexity = 0.25
	WeightFigureTable       = 0.20
	WeightCitationDensity   = 0.15
	WeightLongSentence      = 0.10
)

// LongSentenceCharThreshold is the character length above which a sentence
// counts as long.
const LongSentenceCharThreshold = 120

// Formula complexity tier thresholds: match count and total matched length.
const (
	formulaCountThresholdLow   = 1
	formulaCountThresholdHigh  = 3
	formulaLengthThresholdLow  = 20
	formulaLengthThresholdHigh = 80
)

// formulaPattern recognizes operators, comparison symbols, Greek-letter
// names, and bracketed expressions.
var formulaPattern = regexp.MustCompile(
	`([a-zA-Z]?\s*[+\-*/=<>≤≥∈∑∫∏√^]\s*[a-zA-Z\d])` +
		`|(\b(alpha|beta|gamma|delta|epsilon|zeta|eta|theta|iota|kappa|lambda|mu|nu|xi|omicron|pi|rho|sigma|tau|upsilon|phi|chi|psi|omega)\b)` +
		`|([\d.\s]*[+\-*/=<>≤≥∈∑∫∏√^][\d.\s]+)` +
		`|(\([+\-*/=<>≤≥∈∑∫∏√^]+\))` +
		`|(\[[\w\s+\-*/=<>≤≥∈∑∫∏√^]+\])` +
		`|(\{[\w\s+\-*/=<>≤≥∈∑∫∏√^]+\})`,
)

// citationPattern matches bracketed-numeral citations, parenthetical year
// citations, and "Author et al., YEAR" references.
var citationPattern = regexp.MustCompile(
	`(\[\d+\])|(\([^)]*\d{4}[^(]*\))|(\b[A-Za-z]+\s+et\s+al\.,?\s+\d{4})`,
)

// sentenceDelimiters are the sentence-ending punctuation marks of both
// supported languages.
const sentenceDelimiters = "。？！；!?;"

// SegmentParams is the input for scoring one layout block.
type SegmentParams struct {
	SegmentID  string
	PageIndex  int
	BlockIndex int
	Text       string

	// Concepts is the document's final concept set.
	Concepts map[string]struct{}

	// Page-level counters, computed once per page before scoring its blocks.
	FigureCountOnPage int
	TableCountOnPage  int
}

// AnalyzeSegment scores one text segment with the weighted five-signal
// model. A segment with no signal triggered scores exactly 0.0 and carries
// no reasons. The result is deterministic: identical input produces an
// identical score and reason list.
func AnalyzeSegment(params SegmentParams) common.DifficultySegment {
	trimmed := strings.TrimSpace(params.Text)
	textLower := strings.ToLower(trimmed)
	preview := runePrefix(trimmed, 100)

	marker := common.DifficultySegment{
		SegmentID:   params.SegmentID,
		PageIndex:   params.PageIndex,
		BlockIndex:  params.BlockIndex,
		TextPreview: preview,
		Score:       0.0,
		Reasons:     []string{},
	}

	if textLower == "" {
		return marker
	}

	var reasons []string

	// 1. term density: document concepts appearing as substrings
	termCount := 0
	for concept := range params.Concepts {
		if strings.Contains(textLower, concept) {
			termCount++
		}
	}
	termDensity := float64(termCount)
	if termCount > 0 {
		reasons = append(reasons, fmt.Sprintf("term_density_segment (%d)", termCount))
	}

	// 2. formula complexity, tiered
	formulaCount, formulaLength := countFormulas(textLower)
	formulaComplexity := 0.0
	hasAnyFormula := formulaCount > 0 || formulaLength > 0
	switch {
	case formulaCount >= formulaCountThresholdHigh || formulaLength >= formulaLengthThresholdHigh:
		formulaComplexity = 1.0
	case formulaCount >= formulaCountThresholdLow || formulaLength >= formulaLengthThresholdLow:
		formulaComplexity = 0.6
	case hasAnyFormula:
		formulaComplexity = 0.2
	}
	if hasAnyFormula {
		reasons = append(reasons, fmt.Sprintf("formulas_in_segment (count: %d, length: %d)", formulaCount, formulaLength))
	}

	// 3. figures and tables on the containing page
	figureTable := float64(params.FigureCountOnPage) + float64(params.TableCountOnPage)
	if params.FigureCountOnPage > 0 {
		reasons = append(reasons, fmt.Sprintf("figures_on_page (%d)", params.FigureCountOnPage))
	}
	if params.TableCountOnPage > 0 {
		reasons = append(reasons, fmt.Sprintf("tables_on_page (%d)", params.TableCountOnPage))
	}

	// 4. citation density
	citationCount := len(citationPattern.FindAllStringIndex(trimmed, -1))
	if citationCount > 0 {
		reasons = append(reasons, fmt.Sprintf("citations_in_segment (%d)", citationCount))
	}

	// 5. long sentences
	longSentenceCount := 0
	for _, sentence := range splitSentences(trimmed) {
		if utf8.RuneCountInString(sentence) > LongSentenceCharThreshold {
			longSentenceCount++
		}
	}
	if longSentenceCount > 0 {
		reasons = append(reasons, fmt.Sprintf("long_sentences_in_segment (%d)", longSentenceCount))
	}

	score := termDensity*WeightTermDensity +
		formulaComplexity*WeightFormulaComplexity +
		figureTable*WeightFigureTable +
		float64(citationCount)*WeightCitationDensity +
		float64(longSentenceCount)*WeightLongSentence

	marker.Score = math.Round(score*1000) / 1000
	marker.Reasons = dedupeSorted(reasons)

	return marker
}

// countFormulas returns the number of formula matches and the total matched
// length in characters.
func countFormulas(textLower string) (int, int) {
	matches := formulaPattern.FindAllStringIndex(textLower, -1)
	total := 0
	for _, m := range matches {
		total += utf8.RuneCountInString(textLower[m[0]:m[1]])
	}
	return len(matches), total
}

// splitSentences splits text on sentence-ending punctuation of either
// supported language, keeping the delimiters attached to their sentence.
// Fragments of five characters or fewer are discarded as noise.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if !isSentenceDelimiter(runes[i]) {
			continue
		}
		// consume the full delimiter run before flushing
		if i+1 < len(runes) && isSentenceDelimiter(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(current.String())
		if utf8.RuneCountInString(sentence) > 5 {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	remaining := strings.TrimSpace(current.String())
	if utf8.RuneCountInString(remaining) > 5 {
		sentences = append(sentences, remaining)
	}

	return sentences
}

func isSentenceDelimiter(r rune) bool {
	return strings.ContainsRune(sentenceDelimiters, r)
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func dedupeSorted(reasons []string) []string {
	seen := make(map[string]struct{}, len(reasons))
	unique := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		if _, ok := seen[reason]; ok {
			continue
		}
		seen[reason] = struct{}{}
		unique = append(unique, reason)
	}
	sort.Strings(unique)
	return unique
}
