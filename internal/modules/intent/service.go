package intent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/metrics"
)

// DefaultMaxTokens bounds the extraction answer; the JSON object is small.
const DefaultMaxTokens = 500

// Service runs stage one of the pipeline: conversation history in, structured intent out.
type Service struct {
	llm       ai.LLMProvider
	logger    *zap.Logger
	metrics   *metrics.Metrics
	maxTokens int
}

// NewService creates a Service. A nil logger or metrics set is replaced by a no-op equivalent.
func NewService(llm ai.LLMProvider, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New("")
	}
	return &Service{
		llm:       llm,
		logger:    logger.Named("intent"),
		metrics:   m,
		maxTokens: DefaultMaxTokens,
	}
}

// Extract issues one model call over the full history and parses the answer.
// Malformed answers are recovered into Fallback(); provider errors are returned to the caller.
func (s *Service) Extract(ctx context.Context, history []ai.Message) (ExtractedIntent, error) {
	if len(history) == 0 || history[len(history)-1].Role != ai.RoleUser {
		return ExtractedIntent{}, ErrEmptyHistory
	}

	raw, err := s.llm.Complete(ctx, SystemPrompt, history, s.maxTokens)
	s.metrics.LLMRequests.WithLabelValues("intent", metrics.Status(err)).Inc()
	if err != nil {
		return ExtractedIntent{}, fmt.Errorf("intent extraction: %w", err)
	}

	in, perr := parse(raw)
	if perr != nil {
		s.logger.Warn("unusable intent output, asking for clarification",
			zap.Error(perr), zap.String("snippet", snippet(raw, 200)))
		return Fallback(), nil
	}

	s.logger.Debug("intent extracted",
		zap.String("occasion", in.OccasionValue()),
		zap.Strings("keywords", in.Keywords),
		zap.Float64("confidence", in.Confidence),
		zap.Bool("needs_clarification", in.NeedsClarification))
	return in, nil
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
