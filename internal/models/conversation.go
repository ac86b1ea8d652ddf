package models

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	MinDayCount = 1
	MaxDayCount = 15
)

// Theme is the travel theme slot.
type Theme string

const (
	ThemeKPop     Theme = "KPOP"
	ThemeFood     Theme = "FOOD"
	ThemeCulture  Theme = "CULTURE"
	ThemeNature   Theme = "NATURE"
	ThemeShopping Theme = "SHOPPING"
	ThemeHistory  Theme = "HISTORY"
)

var allThemes = []Theme{ThemeKPop, ThemeFood, ThemeCulture, ThemeNature, ThemeShopping, ThemeHistory}

func AllThemes() []Theme {
	out := make([]Theme, len(allThemes))
	copy(out, allThemes)
	return out
}

// ParseTheme accepts theme names case-insensitively, tolerating "K-POP" and "k pop".
func ParseTheme(s string) (Theme, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", " ", "", "_", "").Replace(norm)
	for _, t := range allThemes {
		if string(t) == norm {
			return t, true
		}
	}
	return "", false
}

// ConversationState is the slot-filling state. Values outside the known set
// decode to StateUnknown.
type ConversationState string

const (
	StateInitial        ConversationState = "INITIAL"
	StateAwaitingTheme  ConversationState = "AWAITING_THEME"
	StateAwaitingRegion ConversationState = "AWAITING_REGION"
	StateAwaitingDays   ConversationState = "AWAITING_DAYS"
	StateReadyForRoute  ConversationState = "READY_FOR_ROUTE"
	StateUnknown        ConversationState = "UNKNOWN"
)

// ParseConversationState maps wire values onto the closed enum. Empty means INITIAL.
func ParseConversationState(s string) ConversationState {
	switch st := ConversationState(strings.ToUpper(strings.TrimSpace(s))); st {
	case "":
		return StateInitial
	case StateInitial, StateAwaitingTheme, StateAwaitingRegion, StateAwaitingDays, StateReadyForRoute:
		return st
	default:
		return StateUnknown
	}
}

func (s *ConversationState) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StateUnknown
		return nil
	}
	if raw == nil {
		*s = StateInitial
		return nil
	}
	*s = ParseConversationState(*raw)
	return nil
}

// Slot names a fillable field of the context in question order.
type Slot string

const (
	SlotTheme  Slot = "theme"
	SlotRegion Slot = "region"
	SlotDays   Slot = "dayCount"
)

// AwaitingState is the state that waits for the given slot.
func AwaitingState(slot Slot) ConversationState {
	switch slot {
	case SlotTheme:
		return StateAwaitingTheme
	case SlotRegion:
		return StateAwaitingRegion
	default:
		return StateAwaitingDays
	}
}

// ConversationContext is the per-session dialogue state carried between turns.
type ConversationContext struct {
	Theme                 *Theme            `json:"theme"`
	Region                *string           `json:"region"`
	Budget                *int              `json:"budget"`
	Preferences           *string           `json:"preferences"`
	DurationMinutes       *int              `json:"durationMinutes"`
	DayCount              *int              `json:"dayCount"`
	ConversationState     ConversationState `json:"conversationState"`
	LastBotQuestion       *string           `json:"lastBotQuestion"`
	SessionID             string            `json:"sessionId"`
	ConversationStartTime time.Time         `json:"conversationStartTime"`
	UserLanguage          string            `json:"userLanguage"`
}

func NewConversationContext(sessionID, language string, now time.Time) ConversationContext {
	return ConversationContext{
		ConversationState:     StateInitial,
		SessionID:             sessionID,
		ConversationStartTime: now,
		UserLanguage:          language,
	}
}

// ValidDayCount reports whether d is an acceptable trip length.
func ValidDayCount(d int) bool {
	return d >= MinDayCount && d <= MaxDayCount
}

// NextMissingSlot returns the first unfilled route slot in theme, region, days order.
func (c ConversationContext) NextMissingSlot() (Slot, bool) {
	switch {
	case c.Theme == nil:
		return SlotTheme, true
	case c.Region == nil || strings.TrimSpace(*c.Region) == "":
		return SlotRegion, true
	case c.DayCount == nil:
		return SlotDays, true
	default:
		return "", false
	}
}

// HasRouteSlots reports whether theme, region and day count are all known.
func (c ConversationContext) HasRouteSlots() bool {
	_, missing := c.NextMissingSlot()
	return !missing
}

// Merge returns base overlaid with every non-null field of update. Null
// fields in update never erase base, and a session id once assigned is kept.
func Merge(base, update ConversationContext) ConversationContext {
	out := base.Clone()

	if update.Theme != nil {
		out.Theme = Ptr(*update.Theme)
	}
	if update.Region != nil {
		out.Region = Ptr(*update.Region)
	}
	if update.Budget != nil {
		out.Budget = Ptr(*update.Budget)
	}
	if update.Preferences != nil {
		out.Preferences = Ptr(*update.Preferences)
	}
	if update.DurationMinutes != nil {
		out.DurationMinutes = Ptr(*update.DurationMinutes)
	}
	if update.DayCount != nil {
		out.DayCount = Ptr(*update.DayCount)
	}
	if update.ConversationState != "" {
		out.ConversationState = update.ConversationState
	}
	if update.LastBotQuestion != nil {
		out.LastBotQuestion = Ptr(*update.LastBotQuestion)
	}
	if out.SessionID == "" {
		out.SessionID = update.SessionID
	}
	if out.ConversationStartTime.IsZero() {
		out.ConversationStartTime = update.ConversationStartTime
	}
	if update.UserLanguage != "" {
		out.UserLanguage = update.UserLanguage
	}
	return out
}

// Clone deep-copies the pointer fields.
func (c ConversationContext) Clone() ConversationContext {
	out := c
	if c.Theme != nil {
		out.Theme = Ptr(*c.Theme)
	}
	if c.Region != nil {
		out.Region = Ptr(*c.Region)
	}
	if c.Budget != nil {
		out.Budget = Ptr(*c.Budget)
	}
	if c.Preferences != nil {
		out.Preferences = Ptr(*c.Preferences)
	}
	if c.DurationMinutes != nil {
		out.DurationMinutes = Ptr(*c.DurationMinutes)
	}
	if c.DayCount != nil {
		out.DayCount = Ptr(*c.DayCount)
	}
	if c.LastBotQuestion != nil {
		out.LastBotQuestion = Ptr(*c.LastBotQuestion)
	}
	return out
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
