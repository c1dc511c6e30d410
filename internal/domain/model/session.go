package model

import "time"

// State is the conversational step an operator is currently in. Idle is represented by
// the absence of a stored session.
type State string

const (
	StateSettingsMenu      State = "settings_menu"
	StateDeleteRange       State = "delete_range"
	StateEditRangeSelect   State = "edit_range_select"
	StateEditRangeInput    State = "edit_range_input"
	StateAddRange          State = "add_range"
	StateAwaitingGiftID    State = "awaiting_gift_id"
	StateAwaitingQuantity  State = "awaiting_quantity"
	StateAwaitingRecipient State = "awaiting_recipient"
)

// Session holds one operator's progress through a multi-step command.
type Session struct {
	OperatorID int64     `json:"operator_id"`
	State      State     `json:"state"`
	Index      int       `json:"index,omitempty"`
	GiftID     int64     `json:"gift_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewSession(operatorID int64, state State) *Session {
	return &Session{OperatorID: operatorID, State: state}
}

// With returns a copy of the session moved to state, keeping the collected fields.
func (s *Session) With(state State) *Session {
	cp := *s
	cp.State = state
	return &cp
}

// Expired reports whether the session has been idle for longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
