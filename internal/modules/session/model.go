// README: Session, conversation, intent log and click records for funnel analytics.
package session

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrBadRequest = errors.New("bad request")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Converted bool      `json:"converted"`
}

// Message is one conversation line (table conversations).
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IntentLog is the per-turn snapshot of extracted intent.
type IntentLog struct {
	ID                 string
	SessionID          string
	Occasion           *string
	Urgency            *string
	Recipient          *string
	Budget             *string
	Dietary            []string
	Keywords           []string
	Confidence         float64
	NeedsClarification bool
	CreatedAt          time.Time
}

type ProductClick struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Turn is everything a completed chat turn writes. It is stored in one transaction
// that also creates the session on first use.
type Turn struct {
	SessionID   string
	UserMessage string
	Reply       string
	Intent      IntentLog
}

// TurnRecord is a Turn with IDs and timestamps assigned, ready to store.
type TurnRecord struct {
	SessionID string
	At        time.Time
	User      Message
	Assistant Message
	Intent    IntentLog
}
