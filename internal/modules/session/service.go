package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service assigns IDs and timestamps and validates input before it reaches the store.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger.Named("session"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.store.Get(ctx, id)
}

// Resolve returns id when that session exists and a freshly minted ID otherwise.
// The new session row is only written by RecordTurn.
func (s *Service) Resolve(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.newID(), nil
	}
	_, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, ErrNotFound):
		return s.newID(), nil
	default:
		return "", err
	}
}

// RecordTurn writes the session upsert, both messages and the intent log atomically.
func (s *Service) RecordTurn(ctx context.Context, t Turn) error {
	if strings.TrimSpace(t.SessionID) == "" {
		return ErrBadRequest
	}
	at := s.now()
	rec := TurnRecord{
		SessionID: t.SessionID,
		At:        at,
		User: Message{
			ID: s.newID(), SessionID: t.SessionID, Role: RoleUser,
			Content: t.UserMessage, CreatedAt: at,
		},
		Assistant: Message{
			ID: s.newID(), SessionID: t.SessionID, Role: RoleAssistant,
			Content: t.Reply, CreatedAt: at.Add(time.Microsecond),
		},
		Intent: t.Intent,
	}
	rec.Intent.ID = s.newID()
	rec.Intent.SessionID = t.SessionID
	rec.Intent.CreatedAt = at
	if rec.Intent.Dietary == nil {
		rec.Intent.Dietary = []string{}
	}
	if rec.Intent.Keywords == nil {
		rec.Intent.Keywords = []string{}
	}
	return s.store.RecordTurn(ctx, rec)
}

type ClickCommand struct {
	SessionID string
	SKU       string
	Name      string
	Position  int
}

// RecordClick logs a product click. Position is the 1-based slot in the recommendation list.
func (s *Service) RecordClick(ctx context.Context, cmd ClickCommand) (*ProductClick, error) {
	cmd.SessionID = strings.TrimSpace(cmd.SessionID)
	cmd.SKU = strings.TrimSpace(cmd.SKU)
	if cmd.SessionID == "" || cmd.SKU == "" || cmd.Position < 1 {
		return nil, ErrBadRequest
	}
	c := ProductClick{
		ID:        s.newID(),
		SessionID: cmd.SessionID,
		SKU:       cmd.SKU,
		Name:      strings.TrimSpace(cmd.Name),
		Position:  cmd.Position,
		CreatedAt: s.now(),
	}
	if err := s.store.RecordClick(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) MarkConverted(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrBadRequest
	}
	if err := s.store.MarkConverted(ctx, id, s.now()); err != nil {
		return err
	}
	s.logger.Info("session converted", zap.String("session_id", id))
	return nil
}

func (s *Service) Messages(ctx context.Context, id string) ([]Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.store.ListMessages(ctx, id)
}
