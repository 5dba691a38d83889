package extract

import (
	"testing"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate"
)

func candidateSet(tokens []string, tags []string) map[string]struct{} {
	set := make(map[string]struct{})
	sentenceCandidates(tokens, tags, DefaultPatternConfig(), set)
	return set
}

func TestSentenceCandidates(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		tags    []string
		want    []string
		notWant []string
	}{
		{
			name:   "single noun",
			tokens: []string{"算法"},
			tags:   []string{"n"},
			want:   []string{"算法"},
		},
		{
			name:   "noun bigram and trigram",
			tokens: []string{"深度", "学习", "模型"},
			tags:   []string{"n", "n", "n"},
			want: []string{
				"深度", "学习", "模型",
				"深度学习", "学习模型",
				"深度学习模型",
			},
		},
		{
			name:   "noun subclass tags count as nouns",
			tokens: []string{"清华", "大学"},
			tags:   []string{"ns", "n"},
			want:   []string{"清华", "大学", "清华大学"},
		},
		{
			name:    "adjective noun pair",
			tokens:  []string{"复杂", "系统"},
			tags:    []string{"a", "n"},
			want:    []string{"复杂系统", "系统"},
			notWant: []string{"复杂系统系统"},
		},
		{
			name:   "verb noun pair",
			tokens: []string{"训练", "模型"},
			tags:   []string{"v", "n"},
			want:   []string{"训练模型", "模型"},
		},
		{
			name:   "ngram net covers non-noun tokens",
			tokens: []string{"的", "研究"},
			tags:   []string{"u", "n"},
			want:   []string{"的", "的研究", "研究"},
		},
		{
			name:   "candidates are lower cased",
			tokens: []string{"BERT"},
			tags:   []string{"nz"},
			want:   []string{"bert"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidateSet(tt.tokens, tt.tags)
			for _, want := range tt.want {
				if _, ok := got[want]; !ok {
					t.Errorf("missing candidate %q, got %v", want, got)
				}
			}
			for _, notWant := range tt.notWant {
				if _, ok := got[notWant]; ok {
					t.Errorf("unexpected candidate %q", notWant)
				}
			}
		})
	}
}

func TestSentenceCandidatesMismatchedInput(t *testing.T) {
	set := make(map[string]struct{})
	sentenceCandidates([]string{"深度", "学习"}, []string{"n"}, DefaultPatternConfig(), set)
	if len(set) != 0 {
		t.Errorf("expected no candidates from mismatched input, got %v", set)
	}
}

func TestSentenceCandidatesNGramLimit(t *testing.T) {
	tokens := []string{"一", "二", "三", "四", "五", "六", "七"}
	tags := []string{"m", "m", "m", "m", "m", "m", "m"}
	got := candidateSet(tokens, tags)

	if _, ok := got["一二三四五六"]; !ok {
		t.Errorf("expected 6-gram candidate")
	}
	if _, ok := got["一二三四五六七"]; ok {
		t.Errorf("7-gram should not be generated")
	}
}

func TestEntityCandidates(t *testing.T) {
	set := make(map[string]struct{})
	entityCandidates([][]annotate.Entity{
		{
			{Text: "深度学习", Label: "CONCEPT", Begin: 0, End: 2},
			{Text: " OpenAI ", Label: "ORG", Begin: 3, End: 4},
		},
		{},
	}, set)

	for _, want := range []string{"深度学习", "openai"} {
		if _, ok := set[want]; !ok {
			t.Errorf("missing entity candidate %q, got %v", want, set)
		}
	}
}
