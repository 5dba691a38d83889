package extract

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Shen-Yuuu/MindFlow-Reader/internal/util"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/corpus"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Concept length bounds, in characters.
const (
	MinConceptLen = 3
	MaxConceptLen = 25
)

// Extractor runs the concept and relation extraction pipeline: chunking,
// annotation, candidate generation, corpus and stopword filtering, and
// dependency-based relation mining.
//
// An Extractor should be created using NewExtractor.
type Extractor struct {
	annotator annotate.Annotator
	corpus    *corpus.Corpus
	patterns  PatternConfig

	maxChunkSize   int
	minChunkSize   int
	parallelChunks int
	maxRetries     int
}

// NewExtractorParams defines the configuration for creating an Extractor.
//
// Annotator is the external annotation collaborator; a nil Annotator leaves
// the pipeline in degraded mode, producing empty results. Corpus may be nil,
// which turns the corpus filter into a pass-through. ParallelChunks controls
// how many chunks are annotated concurrently; aggregation order always
// follows chunk order regardless of completion order.
type NewExtractorParams struct {
	Annotator annotate.Annotator
	Corpus    *corpus.Corpus
	Patterns  *PatternConfig

	MaxChunkSize   int
	MinChunkSize   int
	ParallelChunks int
	MaxRetries     int
}

// NewExtractor creates an Extractor configured with the provided parameters.
func NewExtractor(params NewExtractorParams) *Extractor {
	patterns := DefaultPatternConfig()
	if params.Patterns != nil {
		patterns = *params.Patterns
	}

	maxChunkSize := params.MaxChunkSize
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	minChunkSize := params.MinChunkSize
	if minChunkSize <= 0 {
		minChunkSize = DefaultMinChunkSize
	}
	parallelChunks := params.ParallelChunks
	if parallelChunks <= 0 {
		parallelChunks = 1
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Extractor{
		annotator:      params.Annotator,
		corpus:         params.Corpus,
		patterns:       patterns,
		maxChunkSize:   maxChunkSize,
		minChunkSize:   minChunkSize,
		parallelChunks: parallelChunks,
		maxRetries:     maxRetries,
	}
}

// Result holds one document's final concepts and relationships. Concepts
// and Relationships are sorted for deterministic output; ConceptSet carries
// the same concepts as a membership set for downstream consumers.
type Result struct {
	Concepts      []common.Concept
	Relationships []common.Relationship
	ConceptSet    map[string]struct{}
}

func emptyResult() *Result {
	return &Result{
		Concepts:      []common.Concept{},
		Relationships: []common.Relationship{},
		ConceptSet:    map[string]struct{}{},
	}
}

// Extract runs the full pipeline over raw text. Stage-local failures are
// absorbed: failed chunks are skipped, malformed sentences are skipped, a
// missing corpus degrades to a pass-through. An error is returned only when
// ctx is canceled. Empty input yields an empty result, not an error.
func (e *Extractor) Extract(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		logger.Warn("[Extract] Input text is empty or whitespace only, skipping extraction")
		return emptyResult(), nil
	}
	if e.annotator == nil {
		logger.Error("[Extract] No annotator configured, concept extraction unavailable")
		return emptyResult(), nil
	}

	chunks := splitChunks(text, e.maxChunkSize, e.minChunkSize)
	if len(chunks) == 0 {
		return emptyResult(), nil
	}
	logger.Info("[Extract] Processing chunks", "total_chunks", len(chunks), "text_length", utf8.RuneCountInString(text))

	// Annotate chunks in parallel; each result is written to its own index
	// so the aggregated sentence and arc lists keep chunk order regardless
	// of completion order.
	annotations := make([]*annotate.Annotation, len(chunks))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.parallelChunks)
	for i, chunk := range chunks {
		eg.Go(func() error {
			ann, err := util.RetryWithContext(gCtx, e.maxRetries, func(ctx context.Context) (*annotate.Annotation, error) {
				return e.annotator.Annotate(ctx, chunk)
			})
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				logger.Warn("[Extract] Chunk annotation failed, skipping chunk", "chunk", i, "err", err)
				return nil
			}
			annotations[i] = ann
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	candidates := make(map[string]struct{})
	var allSentences [][]string
	var allArcs [][]annotate.Arc
	processed := 0

	for _, ann := range annotations {
		if ann == nil {
			continue
		}
		processed++

		for i := range ann.Tokens {
			if !ann.SentenceWellFormed(i) {
				logger.Debug("[Extract] Malformed token/tag sentence, skipping")
				continue
			}
			sentenceCandidates(ann.Tokens[i], ann.Tags[i], e.patterns, candidates)
		}
		entityCandidates(ann.Entities, candidates)

		if len(ann.Tokens) > 0 {
			allSentences = append(allSentences, ann.Tokens...)
		}
		if len(ann.Arcs) > 0 {
			allArcs = append(allArcs, ann.Arcs...)
		}
	}
	logger.Info("[Extract] Chunks annotated", "processed", processed, "total", len(chunks), "raw_candidates", len(candidates))

	conceptSet := e.filterConcepts(candidates)
	logger.Info("[Extract] Concepts after filtering", "count", len(conceptSet))

	relationSet := make(map[common.Relationship]struct{})
	if len(conceptSet) > 0 {
		relationSet = extractRelations(allSentences, allArcs, conceptSet)
		logger.Info("[Extract] Relations extracted", "count", len(relationSet))
	}

	result := &Result{
		Concepts:      make([]common.Concept, 0, len(conceptSet)),
		Relationships: make([]common.Relationship, 0, len(relationSet)),
		ConceptSet:    conceptSet,
	}
	for term := range conceptSet {
		result.Concepts = append(result.Concepts, common.Concept{Term: term})
	}
	sort.Slice(result.Concepts, func(i, j int) bool {
		return result.Concepts[i].Term < result.Concepts[j].Term
	})
	for rel := range relationSet {
		result.Relationships = append(result.Relationships, rel)
	}
	sort.Slice(result.Relationships, func(i, j int) bool {
		a, b := result.Relationships[i], result.Relationships[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Label < b.Label
	})

	return result, nil
}

// filterConcepts applies the corpus filter followed by the stopword and
// length filter, yielding the final concept set.
func (e *Extractor) filterConcepts(candidates map[string]struct{}) map[string]struct{} {
	corpusFiltered := candidates
	if e.corpus != nil && e.corpus.Len() > 0 {
		corpusFiltered = make(map[string]struct{})
		for candidate := range candidates {
			if e.corpus.Contains(candidate) {
				corpusFiltered[candidate] = struct{}{}
			}
		}
		logger.Info("[Extract] Corpus filter applied", "kept", len(corpusFiltered), "removed", len(candidates)-len(corpusFiltered))
	} else {
		logger.Warn("[Extract] Title corpus is empty or not loaded, skipping corpus filter")
	}

	final := make(map[string]struct{}, len(corpusFiltered))
	for candidate := range corpusFiltered {
		if _, stop := conceptStopwords[candidate]; stop {
			continue
		}
		length := utf8.RuneCountInString(candidate)
		if length < MinConceptLen || length > MaxConceptLen {
			continue
		}
		final[candidate] = struct{}{}
	}

	return final
}
