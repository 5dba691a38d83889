package store

import (
	"context"
	"sort"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
)

// GraphNode is one concept node in a graph view, with the ids of every
// document referencing it and the category index of its primary document
// within the view's document list.
type GraphNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	DocumentIDs   []string `json:"document_ids"`
	CategoryIndex *int     `json:"category_index"`
}

// GraphLink is one labeled edge of a graph view, attributed to the document
// it was extracted from.
type GraphLink struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Label      string `json:"label"`
	DocumentID string `json:"document_id"`
}

// GraphView is a document-scoped or global reconstruction of the knowledge
// graph. Views are value snapshots; building one never mutates the store.
type GraphView struct {
	Nodes     []GraphNode       `json:"nodes"`
	Links     []GraphLink       `json:"links"`
	Documents []common.Document `json:"documents"`
}

// GraphStore is the shared multi-document knowledge graph. All merge
// operations are union-only: no node or edge is ever removed. Implementations
// must serialize mutations so concurrent ingestions cannot lose updates, and
// QueryView must observe a consistent snapshot.
type GraphStore interface {
	AddDocument(ctx context.Context, doc common.Document) error
	MergeConcepts(ctx context.Context, documentID string, concepts []common.Concept) error
	MergeRelationships(ctx context.Context, documentID string, relationships []common.Relationship) error
	QueryView(ctx context.Context, documentIDs []string) (*GraphView, error)
}

// State is a raw snapshot of graph contents, used by store backends to
// build views with identical semantics. Documents are in ingestion order;
// Nodes map each term to its referencing document ids in ingestion order.
type State struct {
	Documents []common.Document
	Nodes     map[string][]string
	Edges     []GraphLink
}

// View reconstructs a graph view from the snapshot, optionally filtered by
// a set of document ids. Only nodes participating in at least one included
// edge appear. Output ordering is deterministic: nodes by term, links by
// (source, target, label, document id), documents in ingestion order.
func (s *State) View(filter []string) *GraphView {
	var filterSet map[string]struct{}
	if len(filter) > 0 {
		filterSet = make(map[string]struct{}, len(filter))
		for _, id := range filter {
			filterSet[id] = struct{}{}
		}
	}

	inFilter := func(docID string) bool {
		if filterSet == nil {
			return true
		}
		_, ok := filterSet[docID]
		return ok
	}

	documents := make([]common.Document, 0, len(s.Documents))
	docIndex := make(map[string]int)
	for _, doc := range s.Documents {
		if !inFilter(doc.ID) {
			continue
		}
		docIndex[doc.ID] = len(documents)
		documents = append(documents, doc)
	}

	linkSet := make(map[GraphLink]struct{})
	nodesToInclude := make(map[string]struct{})
	for _, edge := range s.Edges {
		if !inFilter(edge.DocumentID) {
			continue
		}
		linkSet[edge] = struct{}{}
		nodesToInclude[edge.Source] = struct{}{}
		nodesToInclude[edge.Target] = struct{}{}
	}

	links := make([]GraphLink, 0, len(linkSet))
	for link := range linkSet {
		links = append(links, link)
	}
	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.DocumentID < b.DocumentID
	})

	nodes := make([]GraphNode, 0, len(nodesToInclude))
	for term := range nodesToInclude {
		nodeDocs := s.Nodes[term]

		docIDs := make([]string, 0, len(nodeDocs))
		for _, docID := range nodeDocs {
			if inFilter(docID) {
				docIDs = append(docIDs, docID)
			}
		}
		if len(docIDs) == 0 {
			continue
		}

		// primary document is the first referencing document in ingestion
		// order within the view
		var categoryIndex *int
		if idx, ok := docIndex[docIDs[0]]; ok {
			categoryIndex = &idx
		}

		nodes = append(nodes, GraphNode{
			ID:            term,
			Name:          term,
			DocumentIDs:   docIDs,
			CategoryIndex: categoryIndex,
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})

	return &GraphView{
		Nodes:     nodes,
		Links:     links,
		Documents: documents,
	}
}
