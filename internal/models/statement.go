package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus mirrors the parse lifecycle stored in the statements table.
type StatementStatus string

const (
	StatementUploaded StatementStatus = "UPLOADED"
	StatementParsing  StatementStatus = "PARSING"
	StatementParsed   StatementStatus = "PARSED"
	StatementError    StatementStatus = "ERROR"
)

// Statement represents one uploaded bank statement file.
// ParseWarnings is stored as a text array column.
type Statement struct {
	StatementID    string          `db:"statement_id"`
	BankID         string          `db:"bank_id"`
	AccountNumber  string          `db:"account_number"`
	AccountIBAN    string          `db:"account_iban"`
	PeriodFrom     time.Time       `db:"period_from"`
	PeriodTo       time.Time       `db:"period_to"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	ClosingBalance decimal.Decimal `db:"closing_balance"`
	FileName       string          `db:"file_name"`
	FileHash       string          `db:"file_hash"`
	FileSize       int64           `db:"file_size"`
	Status         StatementStatus `db:"status"`
	ParseError     *string         `db:"parse_error"` // Nullable
	ParseWarnings  []string        `db:"parse_warnings"`
	TotalCount     int             `db:"total_count"`
	CreditCount    int             `db:"credit_count"`
	DebitCount     int             `db:"debit_count"`
	MatchedCount   int             `db:"matched_count"`
	AuditFields
}
