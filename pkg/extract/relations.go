package extract

import (
	"strings"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/annotate"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/common"
	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
)

// extractRelations mines labeled directed relations between final concepts
// from dependency arcs. Sentences and arcs are the aggregated per-sentence
// arrays across all chunks, concatenated in chunk order; concepts is the
// final concept set.
//
// Direction is preserved as (dependent, head), so one concept pair can
// yield several directed or differently-labeled relations from different
// sentences.
func extractRelations(
	sentences [][]string,
	arcs [][]annotate.Arc,
	concepts map[string]struct{},
) map[common.Relationship]struct{} {
	relations := make(map[common.Relationship]struct{})

	if len(sentences) == 0 || len(arcs) == 0 || len(sentences) != len(arcs) {
		logger.Warn("[Extract] Tokenized sentences and dependency arcs are missing or mismatched, skipping relation extraction",
			"sentences", len(sentences), "arcs", len(arcs))
		return relations
	}

	for sentIdx, tokens := range sentences {
		if len(tokens) == 0 {
			continue
		}

		sentenceArcs := arcs[sentIdx]
		if len(tokens) != len(sentenceArcs) {
			logger.Debug("[Extract] Token and arc count mismatch, skipping sentence", "sentence", sentIdx)
			continue
		}

		// token position -> concept, for tokens whose lower-cased text is a
		// final concept
		conceptAt := make(map[int]string)
		for i, token := range tokens {
			lower := strings.ToLower(token)
			if _, ok := concepts[lower]; ok {
				conceptAt[i] = lower
			}
		}

		for i, arc := range sentenceArcs {
			if arc.Head == 0 {
				// root or unattached token
				continue
			}

			dependent, hasDep := conceptAt[i]
			head, hasHead := conceptAt[arc.Head-1]
			if !hasDep || !hasHead {
				continue
			}
			if dependent == head {
				continue
			}
			if _, stop := relationStopwords[dependent]; stop {
				continue
			}
			if _, stop := relationStopwords[head]; stop {
				continue
			}

			relations[common.Relationship{
				Source: dependent,
				Target: head,
				Label:  remapRelationLabel(arc.Relation),
			}] = struct{}{}
		}
	}

	return relations
}
