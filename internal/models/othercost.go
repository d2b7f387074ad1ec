package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OtherCost represents one other-cost categorization record.
// Tags is stored as a text array column.
type OtherCost struct {
	OtherCostID   string          `db:"other_cost_id"`
	TransactionID *string         `db:"transaction_id"` // Nullable
	Category      string          `db:"category"`
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency"`
	Date          time.Time       `db:"date"`
	Description   string          `db:"description"`
	Notes         string          `db:"notes"`
	Tags          []string        `db:"tags"`
	AuditFields
}

// CategoryPattern represents one learned auto-categorization rule, keyed by
// normalized counterparty name.
type CategoryPattern struct {
	PatternID    string    `db:"pattern_id"`
	Counterparty string    `db:"counterparty"`
	Category     string    `db:"category"`
	UseCount     int       `db:"use_count"`
	LastUsedAt   time.Time `db:"last_used_at"`
	AuditFields
}
