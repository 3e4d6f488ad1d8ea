package curation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/metrics"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/intent"
)

// Service runs stage two: pick and explain products from the search results.
type Service struct {
	llm       ai.LLMProvider
	logger    *zap.Logger
	metrics   *metrics.Metrics
	maxTokens int
}

func NewService(llm ai.LLMProvider, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New("")
	}
	return &Service{
		llm:       llm,
		logger:    logger.Named("curation"),
		metrics:   m,
		maxTokens: DefaultMaxTokens,
	}
}

// Curate asks the model to recommend from the first MaxCandidates candidates and
// recovers the recommended products from its sanitized reply. Provider errors are returned.
func (s *Service) Curate(ctx context.Context, in intent.ExtractedIntent, candidates []catalog.Product) (Result, error) {
	candidates = truncate(candidates, MaxCandidates)
	prompt := BuildPrompt(in, candidates, MaxCandidates)

	raw, err := s.llm.Complete(ctx, SystemPrompt, []ai.Message{{Role: ai.RoleUser, Content: prompt}}, s.maxTokens)
	s.metrics.LLMRequests.WithLabelValues("curation", metrics.Status(err)).Inc()
	if err != nil {
		return Result{}, fmt.Errorf("curation: %w", err)
	}

	reply := Sanitize(raw)
	products, tier := extract(reply, candidates)
	if tier == "top" {
		s.logger.Info("reply referenced no candidates, returning top results",
			zap.Int("candidates", len(candidates)))
	}
	s.logger.Debug("curation done", zap.String("tier", tier), zap.Int("products", len(products)))
	return Result{Reply: reply, Products: products}, nil
}
