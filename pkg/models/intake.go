package models

import "time"

// LedgerEntry is a single recorded intake. Entries never change after creation.
type LedgerEntry struct {
	ID         int64     `json:"id"` // unix-ms timestamp, unique within a day
	AmountMl   int       `json:"amount_ml"`
	Time       string    `json:"time"` // "03:04 PM"
	RecordedAt time.Time `json:"recorded_at"`
}

// LedgerSnapshot is a read-only view of one day's ledger
type LedgerSnapshot struct {
	DateKey    string        `json:"date_key"`
	GoalMl     int           `json:"goal_ml"`
	TotalMl    int           `json:"total_ml"`
	Percentage int           `json:"percentage"` // capped at 100
	Entries    []LedgerEntry `json:"entries"`    // most recent first
}

// AddResult is returned from a successful add
type AddResult struct {
	Entry           LedgerEntry `json:"entry"`
	TotalMl         int         `json:"total_ml"`
	GoalJustReached bool        `json:"goal_just_reached"`
}
