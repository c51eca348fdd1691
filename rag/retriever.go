package rag

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// rerankPassageCap bounds the passage length fed to the cross-encoder, both
// for compute cost and for the model's input limit.
const rerankPassageCap = 1500

// Embedder turns query text into a vector for similarity search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// Engine performs two-stage retrieval: vector recall from the store followed
// by cross-encoder reranking. Every failure along the way degrades instead of
// propagating: a store or embedding error yields an empty result, a scorer
// error yields the validated candidates in recall order.
type Engine struct {
	store    VectorStore
	embedder Embedder
	scorer   CrossEncoderScorer
	logger   *zap.Logger
}

// NewEngine creates a retrieval engine.
func NewEngine(store VectorStore, embedder Embedder, scorer CrossEncoderScorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		scorer:   scorer,
		logger:   logger.With(zap.String("component", "retrieval_engine")),
	}
}

// Retrieve recalls topK candidates for the query (or an explicit comparison
// entity) and reranks them. Returns an empty slice when nothing was found or
// the store was unreachable.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) []Hit {
	hits := e.recall(ctx, query, topK)
	return e.rerank(ctx, query, hits)
}

// RetrieveDeduped is the enumeration variant: candidates are deduplicated by
// (source file, page) before reranking, keeping the first-seen hit per page,
// so that the context aggregates distinct facts rather than near-duplicate
// chunks of the same page.
func (e *Engine) RetrieveDeduped(ctx context.Context, query string, topK int) []Hit {
	hits := e.recall(ctx, query, topK)

	seen := make(map[string]bool, len(hits))
	deduped := make([]Hit, 0, len(hits))
	for _, hit := range hits {
		if hit.Metadata.SourceFile == "" {
			continue
		}
		key := hit.PageKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, hit)
	}

	return e.rerank(ctx, query, deduped)
}

// recall embeds the query, searches the store, and normalizes the results.
// Hits without text are dropped.
func (e *Engine) recall(ctx context.Context, query string, topK int) []Hit {
	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed", zap.Error(err))
		return []Hit{}
	}

	results, err := e.store.Search(ctx, vector, topK)
	if err != nil {
		e.logger.Warn("vector search failed", zap.Error(err))
		return []Hit{}
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hit := normalizeHit(r)
		if hit.Text == "" {
			continue
		}
		hits = append(hits, hit)
	}
	return hits
}

// rerank scores each (query, passage) pair with the cross-encoder and sorts
// descending. On scorer failure the recall order is returned unchanged.
func (e *Engine) rerank(ctx context.Context, query string, hits []Hit) []Hit {
	if len(hits) == 0 {
		return hits
	}

	pairs := make([]QueryPassagePair, len(hits))
	for i, hit := range hits {
		pairs[i] = QueryPassagePair{
			Query:   query,
			Passage: truncateRunes(hit.Text, rerankPassageCap),
		}
	}

	scores, err := e.scorer.Score(ctx, pairs)
	if err != nil {
		e.logger.Warn("rerank failed, keeping recall order", zap.Error(err))
		return hits
	}

	for i := range hits {
		hits[i].RerankScore = scores[i]
		hits[i].Reranked = true
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RerankScore > hits[j].RerankScore
	})
	return hits
}

// Ping verifies that the store is reachable and returns the passage count.
func (e *Engine) Ping(ctx context.Context) (int, error) {
	return e.store.Count(ctx)
}

// SelectStandard applies the standard fusion rule to a reranked sequence:
// rank 1 always enters the context, ranks 2-5 only above the score threshold.
// Low-confidence tail hits would dilute the context, but the model must never
// be starved of the single best candidate.
func SelectStandard(hits []Hit, threshold float64) []Hit {
	if len(hits) == 0 {
		return []Hit{}
	}

	selected := make([]Hit, 0, 5)
	selected = append(selected, hits[0])
	for i := 1; i < len(hits) && i < 5; i++ {
		if hits[i].Reranked && hits[i].RerankScore > threshold {
			selected = append(selected, hits[i])
		}
	}
	return selected
}

// SelectTop returns at most n leading hits.
func SelectTop(hits []Hit, n int) []Hit {
	if len(hits) <= n {
		return hits
	}
	return hits[:n]
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
