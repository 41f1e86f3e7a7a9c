package domain

import "time"

// QuoteRecord published quote kept in the quote journal.
type QuoteRecord struct {
	Timestamp  time.Time `json:"ts"`
	SessionID  string    `json:"session_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	FromAmount string    `json:"from_amount"`
	ToAmount   string    `json:"to_amount"`
	Rate       string    `json:"rate,omitempty"`
}

// QuoteRecordEntry bundles a journaled quote with its WAL index.
type QuoteRecordEntry struct {
	Index  uint64
	Record QuoteRecord
}
