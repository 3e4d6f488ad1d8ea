// README: Chat turn request/response and the collaborators a turn depends on.
package concierge

import (
	"context"
	"errors"

	"concierge/internal/ai"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/curation"
	"concierge/internal/modules/intent"
	"concierge/internal/modules/session"
)

var (
	ErrEmptyMessage = errors.New("message must not be empty")
	ErrInvalidRole  = errors.New("history role must be user or assistant")
)

// MinSearchConfidence is the intent confidence required before the catalog is queried.
const MinSearchConfidence = 0.6

// NoResultsReply is sent when there is nothing to curate.
const NoResultsReply = "I'd love to help you find the perfect gift! Could you tell me a bit more about the occasion and who you're shopping for?"

type IntentExtractor interface {
	Extract(ctx context.Context, history []ai.Message) (intent.ExtractedIntent, error)
}

type CatalogSearcher interface {
	Search(ctx context.Context, keywords []string) []catalog.Product
}

type Curator interface {
	Curate(ctx context.Context, in intent.ExtractedIntent, candidates []catalog.Product) (curation.Result, error)
}

// Sessions resolves session IDs and records finished turns.
type Sessions interface {
	Resolve(ctx context.Context, id string) (string, error)
	RecordTurn(ctx context.Context, t session.Turn) error
}

type TurnRequest struct {
	SessionID string
	Message   string
	History   []ai.Message
}

type TurnResult struct {
	Reply     string                 `json:"reply"`
	Products  []catalog.Product      `json:"products"`
	Intent    intent.ExtractedIntent `json:"intent"`
	SessionID string                 `json:"session_id"`
}

// Outcome labels for the chat_turns_total metric.
const (
	OutcomeClarify     = "clarify"
	OutcomeNoSearch    = "no_search"
	OutcomeNoResults   = "no_results"
	OutcomeRecommended = "recommended"
	OutcomeError       = "error"
)
