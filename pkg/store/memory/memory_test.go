package memory

import (
	"context"
	"reflect"
	"testing"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"
)

func intPtr(i int) *int { return &i }

func seedStore(t *testing.T) *GraphMemoryStorage {
	t.Helper()
	ctx := context.Background()
	s := NewGraphMemoryStorage()

	if err := s.AddDocument(ctx, common.Document{ID: "d1", Title: "First"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeConcepts(ctx, "d1", []common.Concept{{Term: "深度学习"}, {Term: "机器学习"}, {Term: "神经网络"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeRelationships(ctx, "d1", []common.Relationship{
		{Source: "深度学习", Target: "机器学习", Label: "主语"},
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.AddDocument(ctx, common.Document{ID: "d2", Title: "Second"}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeConcepts(ctx, "d2", []common.Concept{{Term: "深度学习"}, {Term: "强化学习"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeRelationships(ctx, "d2", []common.Relationship{
		{Source: "强化学习", Target: "深度学习", Label: "关联"},
	}); err != nil {
		t.Fatal(err)
	}

	return s
}

func TestQueryViewUnfiltered(t *testing.T) {
	s := seedStore(t)

	view, err := s.QueryView(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	wantDocs := []common.Document{
		{ID: "d1", Title: "First"},
		{ID: "d2", Title: "Second"},
	}
	if !reflect.DeepEqual(view.Documents, wantDocs) {
		t.Errorf("Documents = %v, want %v", view.Documents, wantDocs)
	}

	// "神经网络" participates in no edge, so it never appears as a node
	wantNodes := []store.GraphNode{
		{ID: "强化学习", Name: "强化学习", DocumentIDs: []string{"d2"}, CategoryIndex: intPtr(1)},
		{ID: "机器学习", Name: "机器学习", DocumentIDs: []string{"d1"}, CategoryIndex: intPtr(0)},
		{ID: "深度学习", Name: "深度学习", DocumentIDs: []string{"d1", "d2"}, CategoryIndex: intPtr(0)},
	}
	if !reflect.DeepEqual(view.Nodes, wantNodes) {
		t.Errorf("Nodes = %v, want %v", view.Nodes, wantNodes)
	}

	wantLinks := []store.GraphLink{
		{Source: "强化学习", Target: "深度学习", Label: "关联", DocumentID: "d2"},
		{Source: "深度学习", Target: "机器学习", Label: "主语", DocumentID: "d1"},
	}
	if !reflect.DeepEqual(view.Links, wantLinks) {
		t.Errorf("Links = %v, want %v", view.Links, wantLinks)
	}
}

func TestQueryViewFiltered(t *testing.T) {
	s := seedStore(t)

	view, err := s.QueryView(context.Background(), []string{"d2"})
	if err != nil {
		t.Fatal(err)
	}

	wantDocs := []common.Document{{ID: "d2", Title: "Second"}}
	if !reflect.DeepEqual(view.Documents, wantDocs) {
		t.Errorf("Documents = %v, want %v", view.Documents, wantDocs)
	}

	// filtered document ids per node, category index within the filtered list
	wantNodes := []store.GraphNode{
		{ID: "强化学习", Name: "强化学习", DocumentIDs: []string{"d2"}, CategoryIndex: intPtr(0)},
		{ID: "深度学习", Name: "深度学习", DocumentIDs: []string{"d2"}, CategoryIndex: intPtr(0)},
	}
	if !reflect.DeepEqual(view.Nodes, wantNodes) {
		t.Errorf("Nodes = %v, want %v", view.Nodes, wantNodes)
	}

	wantLinks := []store.GraphLink{
		{Source: "强化学习", Target: "深度学习", Label: "关联", DocumentID: "d2"},
	}
	if !reflect.DeepEqual(view.Links, wantLinks) {
		t.Errorf("Links = %v, want %v", view.Links, wantLinks)
	}
}

func TestQueryViewUnknownFilter(t *testing.T) {
	s := seedStore(t)

	view, err := s.QueryView(context.Background(), []string{"missing"})
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Nodes) != 0 || len(view.Links) != 0 || len(view.Documents) != 0 {
		t.Errorf("expected empty view for unknown document, got %+v", view)
	}
}

func TestMergeIsUnionOnly(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	before, err := s.QueryView(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	// merging the same data again must not change the view
	if err := s.MergeConcepts(ctx, "d1", []common.Concept{{Term: "深度学习"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeRelationships(ctx, "d1", []common.Relationship{
		{Source: "深度学习", Target: "机器学习", Label: "主语"},
	}); err != nil {
		t.Fatal(err)
	}

	after, err := s.QueryView(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("idempotent merge changed the view:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestMergeOrderIndependence(t *testing.T) {
	ctx := context.Background()

	build := func(conceptOrder [][]common.Concept) *store.GraphView {
		s := NewGraphMemoryStorage()
		if err := s.AddDocument(ctx, common.Document{ID: "d1", Title: "Doc"}); err != nil {
			t.Fatal(err)
		}
		for _, batch := range conceptOrder {
			if err := s.MergeConcepts(ctx, "d1", batch); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.MergeRelationships(ctx, "d1", []common.Relationship{
			{Source: "a术语", Target: "b术语", Label: "关联"},
		}); err != nil {
			t.Fatal(err)
		}
		view, err := s.QueryView(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		return view
	}

	first := build([][]common.Concept{
		{{Term: "a术语"}},
		{{Term: "b术语"}},
	})
	second := build([][]common.Concept{
		{{Term: "b术语"}},
		{{Term: "a术语"}},
	})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge order changed the view:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestQueryViewEmptyStore(t *testing.T) {
	s := NewGraphMemoryStorage()

	view, err := s.QueryView(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Nodes) != 0 || len(view.Links) != 0 || len(view.Documents) != 0 {
		t.Errorf("expected empty view, got %+v", view)
	}
}
