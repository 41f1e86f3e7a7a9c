package domain

// QuotingSession state of a single from/to quote.
// ToAmount is derived from the other three fields and must never be set directly.
type QuotingSession struct {
	From       *Token
	To         *Token
	FromAmount string
	ToAmount   string
}

// Swapped returns the session with the direction reversed and the previous
// destination amount moved into the source amount. ToAmount is cleared and
// has to be recomputed by the caller.
func (q QuotingSession) Swapped() QuotingSession {
	return QuotingSession{
		From:       q.To,
		To:         q.From,
		FromAmount: q.ToAmount,
	}
}

// Phase recompute state of a session.
type Phase string

const (
	// PhaseIdle no recompute is pending.
	PhaseIdle Phase = "idle"
	// PhasePendingRecompute debounce timer is armed.
	PhasePendingRecompute Phase = "pending_recompute"
)

// View snapshot published to the rendering layer after every change.
type View struct {
	SessionID  string        `json:"session_id"`
	Options    []TokenOption `json:"options"`
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	FromAmount string        `json:"from_amount"`
	ToAmount   string        `json:"to_amount"`
	Rate       string        `json:"rate,omitempty"`
	Loading    bool          `json:"loading"`
	Phase      Phase         `json:"phase"`
}
