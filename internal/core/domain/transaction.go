package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the bank-reported type of a statement line item.
// Stored as text because banks emit variants; the UI filter groups these by
// substring (see the projection package).
type TransactionType string

const (
	TypeTransferIn      TransactionType = "TRANSFER_IN"
	TypeTransferOut     TransactionType = "TRANSFER_OUT"
	TypeInstantTransfer TransactionType = "AFR"
	TypePOSPurchase     TransactionType = "POS_PURCHASE"
	TypeATMWithdrawal   TransactionType = "ATM_WITHDRAWAL"
	TypeBankFee         TransactionType = "BANK_FEE"
	TypeInterest        TransactionType = "INTEREST"
	TypeCorrection      TransactionType = "CORRECTION"
	TypeOther           TransactionType = "OTHER"
)

// Transaction represents one line item within a Statement; the unit of
// reconciliation. Amount sign encodes direction: positive = credit (incoming),
// negative = debit (outgoing).
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	StatementID   string          `json:"statementID"`   // FK -> Statement (Not Null)
	Type          TransactionType `json:"type"`
	BookingDate   time.Time       `json:"bookingDate"`
	ValueDate     time.Time       `json:"valueDate"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"` // payment remittance info

	// Counterparty fields split by role; populated based on direction.
	PayerName         string `json:"payerName"`
	PayerIBAN         string `json:"payerIBAN"`
	PayerAccountNo    string `json:"payerAccountNo"`
	PayerBIC          string `json:"payerBIC"`
	BeneficiaryName   string `json:"beneficiaryName"`
	BeneficiaryIBAN   string `json:"beneficiaryIBAN"`
	BeneficiaryAccNo  string `json:"beneficiaryAccNo"`
	BeneficiaryBIC    string `json:"beneficiaryBIC"`

	// Match fields. At most one of the three document links is set, and a
	// non-empty batch list excludes all three.
	MatchedInvoiceID       *string         `json:"matchedInvoiceID,omitempty"`
	MatchedTransferID      *string         `json:"matchedTransferID,omitempty"`
	MatchedReimbursementID *string         `json:"matchedReimbursementID,omitempty"`
	IsBatchMatch           bool            `json:"isBatchMatch"`
	BatchInvoiceIDs        []string        `json:"batchInvoiceIDs,omitempty"`
	MatchConfidence        decimal.Decimal `json:"matchConfidence"` // [0,1], two decimals
	MatchMethod            MatchMethod     `json:"matchMethod"`
	MatchedAt              *time.Time      `json:"matchedAt,omitempty"`
	MatchedBy              *string         `json:"matchedBy,omitempty"` // nil = system-automatic
	ApprovedAt             *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy             *string         `json:"approvedBy,omitempty"`
	MatchNotes             string          `json:"matchNotes"`

	Version int64 `json:"version"` // optimistic-lock counter, repo managed
	AuditFields
}

// IsCredit reports whether the transaction is incoming money.
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// IsMatched reports whether the transaction carries any match set, single or batch.
func (t *Transaction) IsMatched() bool {
	return t.MatchedInvoiceID != nil ||
		t.MatchedTransferID != nil ||
		t.MatchedReimbursementID != nil ||
		t.IsBatchMatch
}

// MatchedRef returns the single-document reference of the current match, if any.
func (t *Transaction) MatchedRef() (DocumentRef, bool) {
	switch {
	case t.MatchedInvoiceID != nil:
		return DocumentRef{Kind: DocumentInvoice, DocumentID: *t.MatchedInvoiceID}, true
	case t.MatchedTransferID != nil:
		return DocumentRef{Kind: DocumentTransfer, DocumentID: *t.MatchedTransferID}, true
	case t.MatchedReimbursementID != nil:
		return DocumentRef{Kind: DocumentReimbursement, DocumentID: *t.MatchedReimbursementID}, true
	}
	return DocumentRef{}, false
}

// PartnerName resolves the counterparty name by direction: a credit reads the
// payer, a debit the beneficiary. Every downstream display depends on this rule.
func (t *Transaction) PartnerName() string {
	if t.IsCredit() {
		return t.PayerName
	}
	return t.BeneficiaryName
}

// PartnerIBAN resolves the counterparty IBAN by the same direction rule.
func (t *Transaction) PartnerIBAN() string {
	if t.IsCredit() {
		return t.PayerIBAN
	}
	return t.BeneficiaryIBAN
}

// ClearMatch resets every match field back to its unmatched default.
func (t *Transaction) ClearMatch() {
	t.MatchedInvoiceID = nil
	t.MatchedTransferID = nil
	t.MatchedReimbursementID = nil
	t.IsBatchMatch = false
	t.BatchInvoiceIDs = nil
	t.MatchConfidence = decimal.Zero
	t.MatchMethod = MethodNone
	t.MatchedAt = nil
	t.MatchedBy = nil
	t.ApprovedAt = nil
	t.ApprovedBy = nil
}
