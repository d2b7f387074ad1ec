package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one statement line item together with its match state.
// Amount sign encodes direction: positive = credit, negative = debit.
// BatchInvoiceIDs is stored as a text array column.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	StatementID   string          `db:"statement_id"`
	Type          string          `db:"type"`
	BookingDate   time.Time       `db:"booking_date"`
	ValueDate     time.Time       `db:"value_date"`
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency"`
	Description   string          `db:"description"`
	Reference     string          `db:"reference"`

	PayerName        string `db:"payer_name"`
	PayerIBAN        string `db:"payer_iban"`
	PayerAccountNo   string `db:"payer_account_no"`
	PayerBIC         string `db:"payer_bic"`
	BeneficiaryName  string `db:"beneficiary_name"`
	BeneficiaryIBAN  string `db:"beneficiary_iban"`
	BeneficiaryAccNo string `db:"beneficiary_acc_no"`
	BeneficiaryBIC   string `db:"beneficiary_bic"`

	MatchedInvoiceID       *string         `db:"matched_invoice_id"`       // Nullable
	MatchedTransferID      *string         `db:"matched_transfer_id"`      // Nullable
	MatchedReimbursementID *string         `db:"matched_reimbursement_id"` // Nullable
	IsBatchMatch           bool            `db:"is_batch_match"`
	BatchInvoiceIDs        []string        `db:"batch_invoice_ids"`
	MatchConfidence        decimal.Decimal `db:"match_confidence"`
	MatchMethod            string          `db:"match_method"`
	MatchedAt              *time.Time      `db:"matched_at"`  // Nullable
	MatchedBy              *string         `db:"matched_by"`  // Nullable, NULL = system
	ApprovedAt             *time.Time      `db:"approved_at"` // Nullable
	ApprovedBy             *string         `db:"approved_by"` // Nullable
	MatchNotes             string          `db:"match_notes"`

	Version int64 `db:"version"`
	AuditFields
}
