// README: Structured shopping intent extracted from a conversation, and its closed vocabularies.
package intent

import (
	"errors"
	"strings"
)

// ErrEmptyHistory is returned when there is no trailing user message to extract intent from.
var ErrEmptyHistory = errors.New("history must end with a user message")

// DefaultClarifyingQuestion is asked whenever the model output cannot be understood.
const DefaultClarifyingQuestion = "I'd love to help you find the perfect gift! What's the occasion?"

// MaxKeywords caps the search terms kept from a single extraction.
const MaxKeywords = 3

type Occasion string

const (
	OccasionBirthday    Occasion = "birthday"
	OccasionSympathy    Occasion = "sympathy"
	OccasionAnniversary Occasion = "anniversary"
	OccasionCorporate   Occasion = "corporate"
	OccasionThankYou    Occasion = "thank_you"
	OccasionOther       Occasion = "other"
)

type Urgency string

const (
	UrgencyToday    Urgency = "today"
	UrgencyThisWeek Urgency = "this_week"
	UrgencyFlexible Urgency = "flexible"
)

type Budget string

const (
	BudgetLow  Budget = "low"
	BudgetMid  Budget = "mid"
	BudgetHigh Budget = "high"
)

func (o Occasion) Valid() bool {
	switch o {
	case OccasionBirthday, OccasionSympathy, OccasionAnniversary, OccasionCorporate, OccasionThankYou, OccasionOther:
		return true
	}
	return false
}

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyToday, UrgencyThisWeek, UrgencyFlexible:
		return true
	}
	return false
}

func (b Budget) Valid() bool {
	switch b {
	case BudgetLow, BudgetMid, BudgetHigh:
		return true
	}
	return false
}

// ExtractedIntent captures what the customer wants for one turn.
// Nil pointers mean the field was not stated; they serialise as null.
type ExtractedIntent struct {
	Occasion           *Occasion `json:"occasion"`
	Urgency            *Urgency  `json:"urgency"`
	Recipient          *string   `json:"recipient"`
	Budget             *Budget   `json:"budget"`
	Dietary            []string  `json:"dietary"`
	Keywords           []string  `json:"keywords"`
	NeedsClarification bool      `json:"needs_clarification"`
	ClarifyingQuestion *string   `json:"clarifying_question"`
	Confidence         float64   `json:"confidence"`
}

// Fallback is the low-confidence intent used when model output is unusable.
func Fallback() ExtractedIntent {
	q := DefaultClarifyingQuestion
	return ExtractedIntent{
		Dietary:            []string{},
		Keywords:           []string{},
		NeedsClarification: true,
		ClarifyingQuestion: &q,
		Confidence:         0,
	}
}

// Question returns the clarifying question, or "" when none was given.
func (in ExtractedIntent) Question() string {
	if in.ClarifyingQuestion == nil {
		return ""
	}
	return strings.TrimSpace(*in.ClarifyingQuestion)
}

// ShouldClarify reports whether the turn must stop and ask the customer a question.
func (in ExtractedIntent) ShouldClarify() bool {
	return in.NeedsClarification && in.Question() != ""
}

// Searchable reports whether the intent carries enough signal to query the catalog.
func (in ExtractedIntent) Searchable(minConfidence float64) bool {
	return len(in.Keywords) > 0 && in.Confidence >= minConfidence
}

// OccasionValue, UrgencyValue, RecipientValue and BudgetValue return "" for absent fields.
func (in ExtractedIntent) OccasionValue() string {
	if in.Occasion == nil {
		return ""
	}
	return string(*in.Occasion)
}

func (in ExtractedIntent) UrgencyValue() string {
	if in.Urgency == nil {
		return ""
	}
	return string(*in.Urgency)
}

func (in ExtractedIntent) RecipientValue() string {
	if in.Recipient == nil {
		return ""
	}
	return *in.Recipient
}

func (in ExtractedIntent) BudgetValue() string {
	if in.Budget == nil {
		return ""
	}
	return string(*in.Budget)
}
