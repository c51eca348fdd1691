package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// VectorStore is the read-side contract against the external vector database.
type VectorStore interface {
	// Search returns the topK nearest passages for the query embedding.
	Search(ctx context.Context, queryEmbedding []float64, topK int) ([]SearchResult, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)
}

// InMemoryVectorStore is a cosine-similarity store for tests and small corpora.
type InMemoryVectorStore struct {
	documents []Document
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewInMemoryVectorStore creates an empty in-memory store.
func NewInMemoryVectorStore(logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		documents: make([]Document, 0),
		logger:    logger,
	}
}

// AddDocuments stores documents. Every document must carry an embedding.
func (s *InMemoryVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.Embedding == nil {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		s.documents = append(s.documents, doc)
	}

	s.logger.Info("documents added to vector store",
		zap.Int("count", len(docs)),
		zap.Int("total", len(s.documents)))
	return nil
}

// Search scores all documents by cosine similarity and returns the top K.
func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.documents) == 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.Embedding == nil {
			continue
		}
		similarity := cosineSimilarity(queryEmbedding, doc.Embedding)
		results = append(results, SearchResult{
			Document: doc,
			Score:    similarity,
			Distance: 1.0 - similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Count returns the number of stored documents.
func (s *InMemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
