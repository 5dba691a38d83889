package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"
)

// GraphMemoryStorage implements store.GraphStore entirely in process memory.
// It is the default backend when no database is configured. A single RWMutex
// serializes mutations; views are built under a read lock so they always see
// a consistent snapshot.
type GraphMemoryStorage struct {
	mu sync.RWMutex

	// term -> referencing document ids
	nodes map[string]map[string]struct{}
	// full edge identity, one entry per (source, target, label, document)
	edges map[store.GraphLink]struct{}

	documents map[string]common.Document
	docOrder  []string
}

func NewGraphMemoryStorage() *GraphMemoryStorage {
	return &GraphMemoryStorage{
		nodes:     make(map[string]map[string]struct{}),
		edges:     make(map[store.GraphLink]struct{}),
		documents: make(map[string]common.Document),
	}
}

func (s *GraphMemoryStorage) AddDocument(_ context.Context, doc common.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[doc.ID]; !ok {
		s.docOrder = append(s.docOrder, doc.ID)
	}
	s.documents[doc.ID] = doc
	return nil
}

func (s *GraphMemoryStorage) MergeConcepts(_ context.Context, documentID string, concepts []common.Concept) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, concept := range concepts {
		if concept.Term == "" {
			continue
		}
		docs, ok := s.nodes[concept.Term]
		if !ok {
			docs = make(map[string]struct{})
			s.nodes[concept.Term] = docs
		}
		docs[documentID] = struct{}{}
	}
	return nil
}

func (s *GraphMemoryStorage) MergeRelationships(_ context.Context, documentID string, relationships []common.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rel := range relationships {
		if rel.Source == "" || rel.Target == "" {
			continue
		}
		s.edges[store.GraphLink{
			Source:     rel.Source,
			Target:     rel.Target,
			Label:      rel.Label,
			DocumentID: documentID,
		}] = struct{}{}
	}
	return nil
}

func (s *GraphMemoryStorage) QueryView(_ context.Context, documentIDs []string) (*store.GraphView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot().View(documentIDs), nil
}

// snapshot copies the mutable maps into an ordered store.State. Document ids
// per term are emitted in document ingestion order so the primary document of
// a node is stable across calls.
func (s *GraphMemoryStorage) snapshot() *store.State {
	state := &store.State{
		Documents: make([]common.Document, 0, len(s.docOrder)),
		Nodes:     make(map[string][]string, len(s.nodes)),
		Edges:     make([]store.GraphLink, 0, len(s.edges)),
	}

	for _, id := range s.docOrder {
		state.Documents = append(state.Documents, s.documents[id])
	}

	for term, docs := range s.nodes {
		ordered := make([]string, 0, len(docs))
		for _, id := range s.docOrder {
			if _, ok := docs[id]; ok {
				ordered = append(ordered, id)
			}
		}
		// nodes merged for a document that was never registered keep their
		// docs at the end, sorted for stable output
		if len(ordered) < len(docs) {
			known := make(map[string]struct{}, len(ordered))
			for _, id := range ordered {
				known[id] = struct{}{}
			}
			var rest []string
			for id := range docs {
				if _, ok := known[id]; !ok {
					rest = append(rest, id)
				}
			}
			sort.Strings(rest)
			ordered = append(ordered, rest...)
		}
		state.Nodes[term] = ordered
	}

	for edge := range s.edges {
		state.Edges = append(state.Edges, edge)
	}

	return state
}
