// Package rag implements the retrieval side of the pipeline: vector store
// access, candidate validation, cross-encoder reranking, and the fusion rules
// that decide which hits enter the answer context.
package rag

import (
	"fmt"
	"strconv"
)

// Document is a stored passage with its metadata.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
}

// SearchResult is a raw vector search result as returned by a VectorStore.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
	Distance float64  `json:"distance"`
}

// HitMetadata is the normalized document-structure metadata of a hit.
type HitMetadata struct {
	SourceFile   string `json:"source_file"`
	Page         int    `json:"page"`
	Chapter      string `json:"chapter,omitempty"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
}

// Hit is the single retrieval hit shape used downstream of the store
// boundary. Store results are normalized into Hit immediately on receipt so
// that no later component has to branch on source record shape.
type Hit struct {
	ID          string      `json:"id"`
	Distance    float64     `json:"distance"`
	Text        string      `json:"text"`
	Metadata    HitMetadata `json:"metadata"`
	RerankScore float64     `json:"rerank_score"`
	Reranked    bool        `json:"-"`
}

// PageKey identifies the (source file, page) pair a hit came from.
func (h Hit) PageKey() string {
	return fmt.Sprintf("%s_%d", h.Metadata.SourceFile, h.Metadata.Page)
}

// normalizeHit converts a raw store result into a Hit. Source records are
// heterogeneous: older ingests carry flat metadata keys, newer ones nest
// chapter fields, and page numbers arrive as JSON numbers or strings.
func normalizeHit(r SearchResult) Hit {
	hit := Hit{
		ID:       r.Document.ID,
		Distance: r.Distance,
		Text:     r.Document.Content,
	}

	meta := r.Document.Metadata
	if meta == nil {
		return hit
	}

	hit.Metadata.SourceFile = metaString(meta, "source_file")
	hit.Metadata.Page = metaInt(meta, "page")
	if hit.Metadata.Page == 0 {
		hit.Metadata.Page = metaInt(meta, "halaman_awal")
	}
	hit.Metadata.Chapter = metaString(meta, "bab")
	hit.Metadata.ChapterTitle = metaString(meta, "judul_bab")
	hit.Metadata.DocumentType = metaString(meta, "jenis_dokumen")

	return hit
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
