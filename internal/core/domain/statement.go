package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus indicates where an uploaded statement is in its parse lifecycle.
// Transitions only move forward: UPLOADED -> PARSING -> {PARSED | ERROR}.
type StatementStatus string

const (
	StatementUploaded StatementStatus = "UPLOADED"
	StatementParsing  StatementStatus = "PARSING"
	StatementParsed   StatementStatus = "PARSED"
	StatementError    StatementStatus = "ERROR"
)

// CanTransitionTo reports whether moving from the current status to next is a
// legal forward transition. PARSED and ERROR are terminal.
func (s StatementStatus) CanTransitionTo(next StatementStatus) bool {
	switch s {
	case StatementUploaded:
		return next == StatementParsing
	case StatementParsing:
		return next == StatementParsed || next == StatementError
	default:
		return false
	}
}

// Statement represents one uploaded bank statement file and its parsed metadata.
// Transactions are owned children, created in bulk once by ingestion.
type Statement struct {
	StatementID    string          `json:"statementID"` // Primary Key (UUID)
	BankID         string          `json:"bankID"`
	AccountNumber  string          `json:"accountNumber"`
	AccountIBAN    string          `json:"accountIBAN"`
	PeriodFrom     time.Time       `json:"periodFrom"`
	PeriodTo       time.Time       `json:"periodTo"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`

	// File metadata. FileHash (sha256 of content) is the duplicate-upload key:
	// two PARSED statements with the same hash for the same account must not coexist.
	FileName string `json:"fileName"`
	FileHash string `json:"fileHash"`
	FileSize int64  `json:"fileSize"`

	Status        StatementStatus `json:"status"`
	ParseError    *string         `json:"parseError,omitempty"`
	ParseWarnings []string        `json:"parseWarnings,omitempty"`

	// Aggregate counters, always recomputed from owned transactions.
	TotalCount   int `json:"totalCount"`
	CreditCount  int `json:"creditCount"`
	DebitCount   int `json:"debitCount"`
	MatchedCount int `json:"matchedCount"`

	AuditFields
}
