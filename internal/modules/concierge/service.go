package concierge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"concierge/internal/ai"
	"concierge/internal/metrics"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/intent"
	"concierge/internal/modules/session"
)

// Service runs one chat turn: intent, optional search, optional curation, then persistence.
type Service struct {
	intents  IntentExtractor
	catalog  CatalogSearcher
	curator  Curator
	sessions Sessions
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewService(intents IntentExtractor, search CatalogSearcher, curator Curator, sessions Sessions, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New("")
	}
	return &Service{
		intents:  intents,
		catalog:  search,
		curator:  curator,
		sessions: sessions,
		logger:   logger.Named("concierge"),
		metrics:  m,
	}
}

// Chat handles one customer message. Nothing is persisted unless the whole turn succeeds.
func (s *Service) Chat(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	history := make([]ai.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		if !ai.ValidRole(m.Role) {
			return nil, ErrInvalidRole
		}
		history = append(history, m)
	}
	history = append(history, ai.Message{Role: ai.RoleUser, Content: msg})

	res, outcome, err := s.turn(ctx, req.SessionID, msg, history)
	s.metrics.ChatTurns.WithLabelValues(outcome).Inc()
	if err != nil {
		s.logger.Error("chat turn failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("chat turn",
		zap.String("session_id", res.SessionID),
		zap.String("outcome", outcome),
		zap.Int("products", len(res.Products)))
	return res, nil
}

func (s *Service) turn(ctx context.Context, requestedID, msg string, history []ai.Message) (*TurnResult, string, error) {
	sessionID, err := s.sessions.Resolve(ctx, requestedID)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("resolve session: %w", err)
	}

	in, err := s.intents.Extract(ctx, history)
	if err != nil {
		return nil, OutcomeError, err
	}

	var (
		reply    string
		products = []catalog.Product{}
		outcome  string
	)
	switch {
	case in.ShouldClarify():
		reply, outcome = in.Question(), OutcomeClarify
	case !in.Searchable(MinSearchConfidence):
		reply, outcome = NoResultsReply, OutcomeNoSearch
	default:
		found := s.catalog.Search(ctx, in.Keywords)
		if len(found) == 0 {
			reply, outcome = NoResultsReply, OutcomeNoResults
			break
		}
		curated, err := s.curator.Curate(ctx, in, found)
		if err != nil {
			return nil, OutcomeError, err
		}
		reply, products, outcome = curated.Reply, curated.Products, OutcomeRecommended
	}

	if err := s.sessions.RecordTurn(ctx, session.Turn{
		SessionID:   sessionID,
		UserMessage: msg,
		Reply:       reply,
		Intent:      intentLog(in),
	}); err != nil {
		return nil, OutcomeError, fmt.Errorf("record turn: %w", err)
	}

	return &TurnResult{
		Reply:     reply,
		Products:  products,
		Intent:    in,
		SessionID: sessionID,
	}, outcome, nil
}

func intentLog(in intent.ExtractedIntent) session.IntentLog {
	return session.IntentLog{
		Occasion:           optional(in.OccasionValue()),
		Urgency:            optional(in.UrgencyValue()),
		Recipient:          in.Recipient,
		Budget:             optional(in.BudgetValue()),
		Dietary:            in.Dietary,
		Keywords:           in.Keywords,
		Confidence:         in.Confidence,
		NeedsClarification: in.NeedsClarification,
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
