package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/dokuchat/dokuchat/internal/metrics"
	"github.com/dokuchat/dokuchat/llm"
	"github.com/dokuchat/dokuchat/rag"
	"github.com/dokuchat/dokuchat/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Degraded-path answers. The pipeline prefers an apologetic answer over a
// failed request: retrieval and generation faults surface to the user as
// text, not as HTTP errors.
const (
	answerNoDocuments   = "Maaf, tidak ada dokumen ditemukan untuk pertanyaan tersebut."
	answerGeneratorDown = "Maaf, terjadi kesalahan internal saat memproses permintaan Anda. Silakan coba lagi."
	answerClarifyPair   = "Maaf, saya tidak yakin apa yang ingin Anda bandingkan. Tolong sebutkan dua dokumen atau topik."
)

// Config tunes the pipeline.
type Config struct {
	StandardTopK    int
	EnumerationTopK int
	ComparisonTopK  int
	ScoreThreshold  float64
	MaxHistoryTurns int
	// Model is the generator model name, used as a metric label only.
	Model string
}

// Response is the full pipeline result for one query.
type Response struct {
	Answer         string            `json:"answer"`
	Sources        []FormattedSource `json:"sources"`
	Suggestions    []string          `json:"suggestions"`
	UpdatedHistory []types.Turn      `json:"updated_history"`
}

// Service orchestrates the Q&A pipeline: classification, retrieval, answer
// generation, suggestions, and source formatting. The service is stateless
// across requests; conversation history lives with the caller and flows
// through each call.
type Service struct {
	engine    *rag.Engine
	generator llm.Generator
	suggester *Suggester
	sources   *SourceFormatter
	metrics   *metrics.Collector
	logger    *zap.Logger
	cfg       Config
}

// NewService wires the pipeline. metrics may be nil.
func NewService(engine *rag.Engine, generator llm.Generator, suggester *Suggester,
	sources *SourceFormatter, collector *metrics.Collector, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:    engine,
		generator: generator,
		suggester: suggester,
		sources:   sources,
		metrics:   collector,
		logger:    logger.With(zap.String("component", "chatbot_service")),
		cfg:       cfg,
	}
}

// Ready reports whether the vector store is reachable, returning the stored
// passage count.
func (s *Service) Ready(ctx context.Context) (int, error) {
	if s.engine == nil {
		return 0, types.NewError(types.ErrServiceUnavailable, "retrieval engine is not initialized")
	}
	return s.engine.Ping(ctx)
}

// Respond runs the full pipeline for one query. The returned history is the
// caller's history with the current exchange appended.
func (s *Service) Respond(ctx context.Context, query string, history []types.Turn) (*Response, error) {
	if s.engine == nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "service is not fully initialized").
			WithHTTPStatus(503)
	}

	start := time.Now()
	h := NewHistory(history)
	class := Classify(query)
	logger := s.logger.With(zap.String("query_class", string(class)))
	logger.Info("processing query", zap.String("query", truncateRunesWithEllipsis(query, 80)))

	if class == ClassConversational {
		answer := ConversationalReply(query)
		h.Append(types.RoleUser, query)
		h.Append(types.RoleAssistant, answer)
		s.recordChat(class, "ok", time.Since(start))
		return &Response{
			Answer:         answer,
			Sources:        []FormattedSource{},
			Suggestions:    []string{},
			UpdatedHistory: h.Turns(),
		}, nil
	}

	var (
		answer   string
		hits     []rag.Hit
		degraded bool
	)
	switch class {
	case ClassComparison:
		answer, hits, degraded = s.comparison(ctx, query, h)
	case ClassEnumeration:
		answer, hits, degraded = s.enumeration(ctx, query)
	default:
		answer, hits, degraded = s.standard(ctx, query, h)
	}

	h.Append(types.RoleUser, query)
	h.Append(types.RoleAssistant, answer)

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Text)
	}
	suggestions, outcome := s.suggester.Suggest(ctx, query, strings.Join(texts, "\n\n"))
	if s.metrics != nil {
		s.metrics.RecordSuggestionParse(outcome)
	}

	status := "ok"
	if degraded {
		status = "degraded"
	}
	s.recordChat(class, status, time.Since(start))

	return &Response{
		Answer:         answer,
		Sources:        s.sources.Format(hits),
		Suggestions:    suggestions,
		UpdatedHistory: h.Turns(),
	}, nil
}

// standard retrieves for the query and fuses the reranked hits under the
// score threshold rule.
func (s *Service) standard(ctx context.Context, query string, h *History) (string, []rag.Hit, bool) {
	hits := s.engine.Retrieve(ctx, query, s.cfg.StandardTopK)
	if len(hits) == 0 {
		return answerNoDocuments, nil, false
	}
	s.noteRerank(hits)

	final := rag.SelectStandard(hits, s.cfg.ScoreThreshold)
	s.recordHits("standard", len(final))

	prompt := BuildContextualPrompt(query, h.Render(s.cfg.MaxHistoryTurns), BuildContextBlocks(final))
	answer, err := s.generate(ctx, query, prompt)
	if err != nil {
		s.logger.Error("answer generation failed", zap.Error(err))
		return answerGeneratorDown, final, true
	}
	return answer, final, false
}

// enumeration aggregates across many pages: candidates are deduplicated per
// page before reranking and the whole reranked set feeds the prompt, with the
// reported sources capped at ten.
func (s *Service) enumeration(ctx context.Context, query string) (string, []rag.Hit, bool) {
	hits := s.engine.RetrieveDeduped(ctx, query, s.cfg.EnumerationTopK)
	if len(hits) == 0 {
		return answerNoDocuments, nil, false
	}
	s.noteRerank(hits)

	sources := rag.SelectTop(hits, 10)
	s.recordHits("enumeration", len(sources))

	prompt := BuildAggregationPrompt(query, BuildContextBlocks(hits))
	answer, err := s.generate(ctx, query, prompt)
	if err != nil {
		s.logger.Error("answer generation failed", zap.Error(err))
		return answerGeneratorDown, sources, true
	}
	return answer, sources, false
}

// comparison retrieves per extracted entity in parallel and frames the first
// two entities against each other.
func (s *Service) comparison(ctx context.Context, query string, h *History) (string, []rag.Hit, bool) {
	entities := ExtractComparisonEntities(query)
	if len(entities) < 2 {
		return answerClarifyPair, nil, false
	}

	results := make([][]rag.Hit, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	for i, entity := range entities {
		i, entity := i, entity
		g.Go(func() error {
			hits := s.engine.Retrieve(gctx, entity, s.cfg.ComparisonTopK)
			s.noteRerank(hits)
			results[i] = rag.SelectTop(hits, 3)
			return nil
		})
	}
	_ = g.Wait()

	contexts := make(map[string]string, len(entities))
	var combined []rag.Hit
	for i, entity := range entities {
		texts := make([]string, 0, len(results[i]))
		for _, hit := range results[i] {
			texts = append(texts, hit.Text)
		}
		contexts[entity] = strings.Join(texts, "\n\n")
		combined = append(combined, results[i]...)
	}
	s.recordHits("comparison", len(combined))

	prompt := BuildComparisonPrompt(query, h.Render(s.cfg.MaxHistoryTurns), entities, contexts)
	answer, err := s.generate(ctx, "", prompt)
	if err != nil {
		s.logger.Error("comparison generation failed", zap.Error(err))
		return answerGeneratorDown, combined, true
	}
	return answer, combined, false
}

func (s *Service) generate(ctx context.Context, query, prompt string) (string, error) {
	start := time.Now()
	answer, err := s.generator.Generate(ctx, query, prompt)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordLLMRequest(s.cfg.Model, status, time.Since(start))
	}
	return answer, err
}

// noteRerank counts retrievals that came back in recall order because the
// scorer failed.
func (s *Service) noteRerank(hits []rag.Hit) {
	if s.metrics != nil && len(hits) > 0 && !hits[0].Reranked {
		s.metrics.RecordRerankFallback()
	}
}

func (s *Service) recordChat(class QueryClass, status string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordChatRequest(string(class), status, d)
	}
}

func (s *Service) recordHits(strategy string, n int) {
	if s.metrics != nil {
		s.metrics.RecordRetrievalHits(strategy, n)
	}
}
