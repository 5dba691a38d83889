package extract

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/corpus"
)

type fakeAnnotator struct {
	annotation *annotate.Annotation
	err        error
	calls      int
}

func (f *fakeAnnotator) Annotate(_ context.Context, _ string) (*annotate.Annotation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.annotation, nil
}

func TestExtractEmptyText(t *testing.T) {
	annotator := &fakeAnnotator{}
	e := NewExtractor(NewExtractorParams{Annotator: annotator})

	result, err := e.Extract(context.Background(), "   \n  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Concepts) != 0 || len(result.Relationships) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if annotator.calls != 0 {
		t.Errorf("annotator should not be called for empty text")
	}
}

func TestExtractNilAnnotator(t *testing.T) {
	e := NewExtractor(NewExtractorParams{})

	result, err := e.Extract(context.Background(), "深度学习是机器学习的分支")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Concepts) != 0 {
		t.Errorf("expected empty result without annotator, got %+v", result)
	}
}

func TestExtractPipeline(t *testing.T) {
	annotator := &fakeAnnotator{
		annotation: &annotate.Annotation{
			Tokens: [][]string{{"深度学习", "是", "机器学习", "的", "分支"}},
			Tags:   [][]string{{"n", "v", "n", "u", "n"}},
			Arcs: [][]annotate.Arc{{
				{Head: 3, Relation: "nsubj"},
				{Head: 0, Relation: "root"},
				{Head: 0, Relation: "dep"},
				{Head: 3, Relation: "case"},
				{Head: 0, Relation: "dep"},
			}},
		},
	}
	titles := corpus.New([]string{"深度学习", "机器学习"})
	e := NewExtractor(NewExtractorParams{
		Annotator: annotator,
		Corpus:    titles,
	})

	result, err := e.Extract(context.Background(), "深度学习是机器学习的分支")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantConcepts := []common.Concept{
		{Term: "机器学习"},
		{Term: "深度学习"},
	}
	if !reflect.DeepEqual(result.Concepts, wantConcepts) {
		t.Errorf("Concepts = %v, want %v", result.Concepts, wantConcepts)
	}

	wantRelationships := []common.Relationship{
		{Source: "深度学习", Target: "机器学习", Label: "主语"},
	}
	if !reflect.DeepEqual(result.Relationships, wantRelationships) {
		t.Errorf("Relationships = %v, want %v", result.Relationships, wantRelationships)
	}

	for _, concept := range wantConcepts {
		if _, ok := result.ConceptSet[concept.Term]; !ok {
			t.Errorf("ConceptSet missing %q", concept.Term)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	annotator := &fakeAnnotator{
		annotation: &annotate.Annotation{
			Tokens: [][]string{{"神经网络", "推动", "深度学习"}},
			Tags:   [][]string{{"n", "v", "n"}},
			Arcs: [][]annotate.Arc{{
				{Head: 2, Relation: "nsubj"},
				{Head: 0, Relation: "root"},
				{Head: 2, Relation: "dobj"},
			}},
		},
	}
	titles := corpus.New([]string{"神经网络", "深度学习"})
	e := NewExtractor(NewExtractorParams{Annotator: annotator, Corpus: titles})

	first, err := e.Extract(context.Background(), "神经网络推动深度学习")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Extract(context.Background(), "神经网络推动深度学习")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestExtractFailedChunksAreSkipped(t *testing.T) {
	annotator := &fakeAnnotator{err: errors.New("annotation service unavailable")}
	e := NewExtractor(NewExtractorParams{
		Annotator:  annotator,
		MaxRetries: 2,
	})

	result, err := e.Extract(context.Background(), "深度学习是机器学习的分支")
	if err != nil {
		t.Fatalf("chunk failure must not fail extraction: %v", err)
	}
	if len(result.Concepts) != 0 {
		t.Errorf("expected empty result when all chunks fail, got %+v", result)
	}
	if annotator.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", annotator.calls)
	}
}

func TestExtractCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	annotator := &fakeAnnotator{err: errors.New("unreachable")}
	e := NewExtractor(NewExtractorParams{Annotator: annotator})

	if _, err := e.Extract(ctx, "深度学习是机器学习的分支"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestFilterConcepts(t *testing.T) {
	// "这个" is in the corpus but below minimum length, "the" is a stopword,
	// "随便什么" is not in the corpus
	candidates := map[string]struct{}{
		"深度学习": {},
		"这个":   {},
		"the":  {},
		"随便什么": {},
	}
	titles := corpus.New([]string{"深度学习", "这个", "the"})
	e := NewExtractor(NewExtractorParams{Corpus: titles})

	got := e.filterConcepts(candidates)
	want := map[string]struct{}{"深度学习": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterConcepts() = %v, want %v", got, want)
	}
}

func TestFilterConceptsWithoutCorpus(t *testing.T) {
	candidates := map[string]struct{}{
		"深度学习": {},
		"了":    {},
	}
	e := NewExtractor(NewExtractorParams{})

	got := e.filterConcepts(candidates)
	want := map[string]struct{}{"深度学习": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterConcepts() = %v, want %v", got, want)
	}
}
