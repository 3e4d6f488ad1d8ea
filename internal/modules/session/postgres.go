package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts, err := migrationStatements("postgres")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, created_at, updated_at, converted
		FROM sessions
		WHERE id = $1`, id,
	)
	var sess Session
	err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt, &sess.Converted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStore) RecordTurn(ctx context.Context, t TurnRecord) error {
	dietary, err := json.Marshal(t.Intent.Dietary)
	if err != nil {
		return err
	}
	keywords, err := json.Marshal(t.Intent.Keywords)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO sessions (id, created_at, updated_at, converted)
		VALUES ($1, $2, $2, FALSE)
		ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
		t.SessionID, t.At,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	for _, m := range []Message{t.User, t.Assistant} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversations (id, session_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.SessionID, string(m.Role), m.Content, m.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	in := t.Intent
	if _, err := tx.Exec(ctx, `
		INSERT INTO intent_logs (
			id, session_id, occasion, urgency, recipient, budget,
			dietary, keywords, confidence, needs_clarification, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11)`,
		in.ID, in.SessionID, in.Occasion, in.Urgency, in.Recipient, in.Budget,
		string(dietary), string(keywords), in.Confidence, in.NeedsClarification, in.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert intent log: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) RecordClick(ctx context.Context, c ProductClick) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO product_clicks (id, session_id, sku, name, position, created_at)
		SELECT $1::text, id, $3::text, $4::text, $5::int, $6::timestamptz FROM sessions WHERE id = $2`,
		c.ID, c.SessionID, c.SKU, c.Name, c.Position, c.CreatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkConverted(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE sessions
		SET converted = TRUE, updated_at = $2
		WHERE id = $1`, id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, id string) ([]Message, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at, role DESC`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
