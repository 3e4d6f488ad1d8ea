package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore implements Store on database/sql with the modernc.org/sqlite driver.
// Timestamps are stored as unix microseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	stmts, err := migrationStatements("sqlite")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, converted
		FROM sessions
		WHERE id = ?`, id,
	)
	var sess Session
	var created, updated int64
	err := row.Scan(&sess.ID, &created, &updated, &sess.Converted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = fromMicros(created)
	sess.UpdatedAt = fromMicros(updated)
	return &sess, nil
}

func (s *SQLiteStore) RecordTurn(ctx context.Context, t TurnRecord) error {
	dietary, err := json.Marshal(t.Intent.Dietary)
	if err != nil {
		return err
	}
	keywords, err := json.Marshal(t.Intent.Keywords)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	at := t.At.UnixMicro()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at, converted)
		VALUES (?, ?, ?, 0)
		ON CONFLICT (id) DO UPDATE SET updated_at = excluded.updated_at`,
		t.SessionID, at, at,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	for _, m := range []Message{t.User, t.Assistant} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO conversations (id, session_id, role, content, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.SessionID, string(m.Role), m.Content, m.CreatedAt.UnixMicro(),
		); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	in := t.Intent
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO intent_logs (
			id, session_id, occasion, urgency, recipient, budget,
			dietary, keywords, confidence, needs_clarification, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.SessionID, nullString(in.Occasion), nullString(in.Urgency), nullString(in.Recipient),
		nullString(in.Budget), string(dietary), string(keywords), in.Confidence, in.NeedsClarification,
		in.CreatedAt.UnixMicro(),
	); err != nil {
		return fmt.Errorf("insert intent log: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) RecordClick(ctx context.Context, c ProductClick) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO product_clicks (id, session_id, sku, name, position, created_at)
		SELECT ?, id, ?, ?, ?, ? FROM sessions WHERE id = ?`,
		c.ID, c.SKU, c.Name, c.Position, c.CreatedAt.UnixMicro(), c.SessionID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) MarkConverted(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET converted = 1, updated_at = ?
		WHERE id = ?`, at.UnixMicro(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListMessages(ctx context.Context, id string) ([]Message, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM conversations
		WHERE session_id = ?
		ORDER BY created_at, role DESC`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		var created int64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMicros(created)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}
