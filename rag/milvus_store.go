package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dokuchat/dokuchat/internal/tlsutil"
	"go.uber.org/zap"
)

// MilvusConfig configures the Milvus vector store client. A Zilliz Cloud
// endpoint works with BaseURL plus Token.
type MilvusConfig struct {
	BaseURL    string        `json:"base_url"`
	Token      string        `json:"token,omitempty"`
	Username   string        `json:"username,omitempty"`
	Password   string        `json:"password,omitempty"`
	Database   string        `json:"database,omitempty"`
	Collection string        `json:"collection"`
	// MetricType matches the collection index metric: L2, IP, or COSINE.
	MetricType string `json:"metric_type,omitempty"`
	// VectorField is the ANNS field name. Default: "vector".
	VectorField string `json:"vector_field,omitempty"`
	// OutputFields are the entity fields requested per hit.
	OutputFields []string       `json:"output_fields,omitempty"`
	SearchParams map[string]any `json:"search_params,omitempty"`
	Timeout      time.Duration  `json:"timeout,omitempty"`
}

// MilvusStore implements VectorStore against the Milvus REST API (v2).
type MilvusStore struct {
	cfg    MilvusConfig
	client *http.Client
	logger *zap.Logger
}

// defaultOutputFields mirrors the ingested document chunk schema.
var defaultOutputFields = []string{
	"text", "chunk_id", "source_file", "halaman_awal",
	"judul_bab", "bab", "jenis_dokumen",
}

// NewMilvusStore creates a Milvus-backed VectorStore.
func NewMilvusStore(cfg MilvusConfig, logger *zap.Logger) *MilvusStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:19530"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.MetricType == "" {
		cfg.MetricType = "L2"
	}
	if cfg.VectorField == "" {
		cfg.VectorField = "vector"
	}
	if len(cfg.OutputFields) == 0 {
		cfg.OutputFields = defaultOutputFields
	}
	if cfg.SearchParams == nil {
		cfg.SearchParams = map[string]any{"nprobe": 10}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &MilvusStore{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "milvus_store")),
	}
}

func (s *MilvusStore) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Token auth (Zilliz Cloud).
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	if s.cfg.Username != "" && s.cfg.Password != "" {
		req.SetBasicAuth(s.cfg.Username, s.cfg.Password)
	}
}

// doJSON performs a JSON HTTP request and decodes the response.
func (s *MilvusStore) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.applyHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Milvus REST returns 200 even on errors; the body carries the code.
	var baseResp struct {
		Code    int    `json:"code"`
		Message string `json:"message,omitempty"`
	}
	if err := json.Unmarshal(respBody, &baseResp); err == nil && baseResp.Code != 0 {
		return fmt.Errorf("milvus error: code=%d message=%s", baseResp.Code, baseResp.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("milvus request failed: method=%s path=%s status=%d body=%s",
			method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Search runs a vector similarity search against the collection.
func (s *MilvusStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]SearchResult, error) {
	if strings.TrimSpace(s.cfg.Collection) == "" {
		return nil, fmt.Errorf("milvus collection is required")
	}
	if topK <= 0 {
		return []SearchResult{}, nil
	}
	if len(queryEmbedding) == 0 {
		return nil, fmt.Errorf("query embedding is required")
	}

	req := map[string]any{
		"dbName":         s.cfg.Database,
		"collectionName": s.cfg.Collection,
		"data":           [][]float64{queryEmbedding},
		"annsField":      s.cfg.VectorField,
		"limit":          topK,
		"outputFields":   s.cfg.OutputFields,
		"searchParams":   s.cfg.SearchParams,
	}

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    [][]struct {
			ID       any            `json:"id"`
			Distance float64        `json:"distance"`
			Entity   map[string]any `json:"entity"`
		} `json:"data"`
	}

	if err := s.doJSON(ctx, http.MethodPost, "/v2/vectordb/entities/search", req, &resp); err != nil {
		return nil, fmt.Errorf("search entities: %w", err)
	}

	results := make([]SearchResult, 0)
	if len(resp.Data) == 0 {
		return results, nil
	}

	for _, hit := range resp.Data[0] {
		doc := Document{ID: fmt.Sprintf("%v", hit.ID)}
		if hit.Entity != nil {
			if content, ok := hit.Entity["text"].(string); ok {
				doc.Content = content
			}
			// The chunk schema stores structure fields flat on the entity.
			doc.Metadata = hit.Entity
		}
		results = append(results, SearchResult{
			Document: doc,
			Score:    s.distanceToScore(hit.Distance),
			Distance: hit.Distance,
		})
	}

	return results, nil
}

// distanceToScore converts a Milvus distance into a similarity score.
func (s *MilvusStore) distanceToScore(distance float64) float64 {
	switch s.cfg.MetricType {
	case "IP", "COSINE":
		// Higher is better, distance is already a similarity.
		return distance
	case "L2":
		return 1.0 / (1.0 + distance)
	default:
		return 1.0 - distance
	}
}

// Count returns the number of entities in the collection.
func (s *MilvusStore) Count(ctx context.Context) (int, error) {
	if strings.TrimSpace(s.cfg.Collection) == "" {
		return 0, fmt.Errorf("milvus collection is required")
	}

	req := map[string]any{
		"dbName":         s.cfg.Database,
		"collectionName": s.cfg.Collection,
	}

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			RowCount int `json:"rowCount"`
		} `json:"data"`
	}

	if err := s.doJSON(ctx, http.MethodPost, "/v2/vectordb/collections/get_stats", req, &resp); err != nil {
		return 0, fmt.Errorf("get collection stats: %w", err)
	}
	return resp.Data.RowCount, nil
}
