package difficulty

import (
	"reflect"
	"strings"
	"testing"
)

func TestAnalyzeSegmentEmptyText(t *testing.T) {
	marker := AnalyzeSegment(SegmentParams{
		SegmentID:  "p0_b0",
		PageIndex:  0,
		BlockIndex: 0,
		Text:       "   \n ",
		Concepts:   map[string]struct{}{"深度学习": {}},
	})

	if marker.Score != 0.0 {
		t.Errorf("score = %v, want 0.0", marker.Score)
	}
	if len(marker.Reasons) != 0 {
		t.Errorf("reasons = %v, want none", marker.Reasons)
	}
	if marker.SegmentID != "p0_b0" {
		t.Errorf("segment id = %q", marker.SegmentID)
	}
}

func TestAnalyzeSegmentTermDensity(t *testing.T) {
	marker := AnalyzeSegment(SegmentParams{
		SegmentID: "p0_b1",
		Text:      "本文介绍深度学习的基础知识。",
		Concepts:  map[string]struct{}{"深度学习": {}, "强化学习": {}},
	})

	if marker.Score != 0.3 {
		t.Errorf("score = %v, want 0.3", marker.Score)
	}
	want := []string{"term_density_segment (1)"}
	if !reflect.DeepEqual(marker.Reasons, want) {
		t.Errorf("reasons = %v, want %v", marker.Reasons, want)
	}
}

func TestAnalyzeSegmentTermDensityRounding(t *testing.T) {
	marker := AnalyzeSegment(SegmentParams{
		SegmentID: "p0_b2",
		Text:      "深度学习、机器学习与神经网络密切联系。",
		Concepts: map[string]struct{}{
			"深度学习": {},
			"机器学习": {},
			"神经网络": {},
		},
	})

	// 3 * 0.30 must come out as exactly 0.9 after rounding
	if marker.Score != 0.9 {
		t.Errorf("score = %v, want 0.9", marker.Score)
	}
}

func TestAnalyzeSegmentFormulas(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantScore  float64
		wantReason string
	}{
		{
			name:       "mid tier",
			text:       "x + y, z = w",
			wantScore:  0.15,
			wantReason: "formulas_in_segment (count: 2, length: 10)",
		},
		{
			name:       "high tier from match count",
			text:       "alpha beta gamma delta",
			wantScore:  0.25,
			wantReason: "formulas_in_segment (count: 4, length: 19)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := AnalyzeSegment(SegmentParams{
				SegmentID: "p1_b0",
				Text:      tt.text,
				Concepts:  map[string]struct{}{},
			})
			if marker.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", marker.Score, tt.wantScore)
			}
			if !reflect.DeepEqual(marker.Reasons, []string{tt.wantReason}) {
				t.Errorf("reasons = %v, want [%s]", marker.Reasons, tt.wantReason)
			}
		})
	}
}

func TestAnalyzeSegmentFiguresAndTables(t *testing.T) {
	marker := AnalyzeSegment(SegmentParams{
		SegmentID:         "p2_b0",
		PageIndex:         2,
		Text:              "这是一个简单的段落。",
		Concepts:          map[string]struct{}{},
		FigureCountOnPage: 1,
	})

	if marker.Score != 0.2 {
		t.Errorf("score = %v, want 0.2", marker.Score)
	}
	want := []string{"figures_on_page (1)"}
	if !reflect.DeepEqual(marker.Reasons, want) {
		t.Errorf("reasons = %v, want %v", marker.Reasons, want)
	}

	marker = AnalyzeSegment(SegmentParams{
		SegmentID:         "p2_b1",
		PageIndex:         2,
		Text:              "这是另一个简单的段落。",
		Concepts:          map[string]struct{}{},
		FigureCountOnPage: 1,
		TableCountOnPage:  2,
	})

	if marker.Score != 0.6 {
		t.Errorf("score = %v, want 0.6", marker.Score)
	}
	want = []string{"figures_on_page (1)", "tables_on_page (2)"}
	if !reflect.DeepEqual(marker.Reasons, want) {
		t.Errorf("reasons = %v, want %v", marker.Reasons, want)
	}
}

func TestAnalyzeSegmentCitations(t *testing.T) {
	marker := AnalyzeSegment(SegmentParams{
		SegmentID: "p3_b0",
		Text:      "详见 (Smith et al., 2020) 的研究结论。",
		Concepts:  map[string]struct{}{},
	})

	if marker.Score != 0.15 {
		t.Errorf("score = %v, want 0.15", marker.Score)
	}
	want := []string{"citations_in_segment (1)"}
	if !reflect.DeepEqual(marker.Reasons, want) {
		t.Errorf("reasons = %v, want %v", marker.Reasons, want)
	}
}

func TestAnalyzeSegmentLongSentence(t *testing.T) {
	marker := AnalyzeSegment(SegmentParams{
		SegmentID: "p4_b0",
		Text:      strings.Repeat("很", LongSentenceCharThreshold+1) + "。",
		Concepts:  map[string]struct{}{},
	})

	if marker.Score != 0.1 {
		t.Errorf("score = %v, want 0.1", marker.Score)
	}
	want := []string{"long_sentences_in_segment (1)"}
	if !reflect.DeepEqual(marker.Reasons, want) {
		t.Errorf("reasons = %v, want %v", marker.Reasons, want)
	}
}

func TestAnalyzeSegmentDeterministic(t *testing.T) {
	params := SegmentParams{
		SegmentID:         "p5_b0",
		PageIndex:         5,
		BlockIndex:        0,
		Text:              "深度学习依赖大规模数据，详见 (Smith et al., 2020)。",
		Concepts:          map[string]struct{}{"深度学习": {}},
		FigureCountOnPage: 1,
	}

	first := AnalyzeSegment(params)
	second := AnalyzeSegment(params)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs: %+v vs %+v", first, second)
	}
	if first.Score <= 0 {
		t.Errorf("expected positive score, got %v", first.Score)
	}
}

func TestAnalyzeSegmentTextPreview(t *testing.T) {
	text := strings.Repeat("长", 150)
	marker := AnalyzeSegment(SegmentParams{
		SegmentID: "p6_b0",
		Text:      text,
		Concepts:  map[string]struct{}{},
	})

	if got := len([]rune(marker.TextPreview)); got != 100 {
		t.Errorf("preview length = %d runes, want 100", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: []string(nil),
		},
		{
			name: "mixed delimiters",
			text: "这是第一句话。这是第二句话！短。",
			want: []string{"这是第一句话。", "这是第二句话！"},
		},
		{
			name: "delimiter run stays attached",
			text: "真的是这样吗？！当然是这样的。",
			want: []string{"真的是这样吗？！", "当然是这样的。"},
		},
		{
			name: "trailing text without delimiter",
			text: "这句话没有结束标点符号",
			want: []string{"这句话没有结束标点符号"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSentences() = %v, want %v", got, tt.want)
			}
		})
	}
}
