package pg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/util"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/store"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
}

// GraphDBStorage implements store.GraphStore on PostgreSQL. All merge
// operations are idempotent upserts so re-ingesting a document never
// duplicates graph data. A mutex serializes writes from concurrent
// ingestions sharing one storage instance.
type GraphDBStorage struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

// NewGraphDBStorageWithConnection creates a GraphDBStorage using an existing
// database connection or pool. The schema must already be migrated.
func NewGraphDBStorageWithConnection(conn pgxIConn) *GraphDBStorage {
	return &GraphDBStorage{conn: conn}
}

// Migrate applies all pending schema migrations from sourceURL (for example
// "file://migrations") against the given database URL. A database that is
// already up to date is not an error.
func Migrate(sourceURL, databaseURL string) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *GraphDBStorage) AddDocument(ctx context.Context, doc common.Document) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	_, err := s.conn.Exec(ctx, `
		INSERT INTO documents (id, title)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title
	`, doc.ID, util.SanitizeText(doc.Title))
	return err
}

func (s *GraphDBStorage) MergeConcepts(ctx context.Context, documentID string, concepts []common.Concept) error {
	if len(concepts) == 0 {
		return nil
	}

	batch := &pgxv5.Batch{}
	for _, concept := range concepts {
		term := util.SanitizeText(concept.Term)
		if term == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO concept_nodes (term, document_id)
			VALUES ($1, $2)
			ON CONFLICT (term, document_id) DO NOTHING
		`, term, documentID)
	}
	if batch.Len() == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	return s.conn.SendBatch(ctx, batch).Close()
}

func (s *GraphDBStorage) MergeRelationships(ctx context.Context, documentID string, relationships []common.Relationship) error {
	if len(relationships) == 0 {
		return nil
	}

	batch := &pgxv5.Batch{}
	for _, rel := range relationships {
		source := util.SanitizeText(rel.Source)
		target := util.SanitizeText(rel.Target)
		if source == "" || target == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO concept_edges (source, target, label, document_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (source, target, label, document_id) DO NOTHING
		`, source, target, util.SanitizeText(rel.Label), documentID)
	}
	if batch.Len() == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	return s.conn.SendBatch(ctx, batch).Close()
}

// QueryView loads the graph contents for the requested documents (or all
// documents when the filter is empty) and reconstructs the view in memory.
// Loading three flat result sets keeps the SQL trivial; view assembly shares
// its semantics with the in-memory backend.
func (s *GraphDBStorage) QueryView(ctx context.Context, documentIDs []string) (*store.GraphView, error) {
	state := &store.State{
		Nodes: make(map[string][]string),
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, title FROM documents ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	for rows.Next() {
		var doc common.Document
		if err := rows.Scan(&doc.ID, &doc.Title); err != nil {
			rows.Close()
			return nil, err
		}
		state.Documents = append(state.Documents, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.conn.Query(ctx, `
		SELECT n.term, n.document_id
		FROM concept_nodes n
		JOIN documents d ON d.id = n.document_id
		ORDER BY n.term, d.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept nodes: %w", err)
	}
	for rows.Next() {
		var term, docID string
		if err := rows.Scan(&term, &docID); err != nil {
			rows.Close()
			return nil, err
		}
		state.Nodes[term] = append(state.Nodes[term], docID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.conn.Query(ctx, `
		SELECT source, target, label, document_id FROM concept_edges
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load concept edges: %w", err)
	}
	for rows.Next() {
		var edge store.GraphLink
		if err := rows.Scan(&edge.Source, &edge.Target, &edge.Label, &edge.DocumentID); err != nil {
			rows.Close()
			return nil, err
		}
		state.Edges = append(state.Edges, edge)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return state.View(documentIDs), nil
}
