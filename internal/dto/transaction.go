package dto

import (
	"time"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListTransactionsParams carries the projection criteria for listing a
// statement's transactions. Empty criteria are no-ops.
type ListTransactionsParams struct {
	TypeCategory string `form:"type"`   // coarse UI category, see projection package
	MatchStatus  string `form:"match"`  // "matched" | "unmatched" | ""
	Query        string `form:"q"`      // free text against partner name or description
	SortBy       string `form:"sortBy"` // "date" | "amount" | "type"
	SortDesc     bool   `form:"desc"`
}

// TransactionResponse is the API representation of a statement transaction.
type TransactionResponse struct {
	TransactionID   string                 `json:"transactionID"`
	StatementID     string                 `json:"statementID"`
	Type            domain.TransactionType `json:"type"`
	BookingDate     time.Time              `json:"bookingDate"`
	ValueDate       time.Time              `json:"valueDate"`
	Amount          decimal.Decimal        `json:"amount"`
	Currency        string                 `json:"currency"`
	Description     string                 `json:"description"`
	Reference       string                 `json:"reference"`
	PartnerName     string                 `json:"partnerName"`
	PartnerIBAN     string                 `json:"partnerIBAN"`
	Matched         bool                   `json:"matched"`
	MatchedRef      *domain.DocumentRef    `json:"matchedRef,omitempty"`
	IsBatchMatch    bool                   `json:"isBatchMatch"`
	BatchInvoiceIDs []string               `json:"batchInvoiceIDs,omitempty"`
	MatchConfidence decimal.Decimal        `json:"matchConfidence"`
	MatchMethod     domain.MatchMethod     `json:"matchMethod"`
	MatchedAt       *time.Time             `json:"matchedAt,omitempty"`
	MatchedBy       *string                `json:"matchedBy,omitempty"`
	MatchNotes      string                 `json:"matchNotes,omitempty"`
}

// ToTransactionResponse converts a domain transaction to its API representation.
// Partner fields are resolved by the direction rule so that every display path
// sees the same counterparty.
func ToTransactionResponse(d domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:   d.TransactionID,
		StatementID:     d.StatementID,
		Type:            d.Type,
		BookingDate:     d.BookingDate,
		ValueDate:       d.ValueDate,
		Amount:          d.Amount,
		Currency:        d.Currency,
		Description:     d.Description,
		Reference:       d.Reference,
		PartnerName:     d.PartnerName(),
		PartnerIBAN:     d.PartnerIBAN(),
		Matched:         d.IsMatched(),
		IsBatchMatch:    d.IsBatchMatch,
		BatchInvoiceIDs: d.BatchInvoiceIDs,
		MatchConfidence: d.MatchConfidence,
		MatchMethod:     d.MatchMethod,
		MatchedAt:       d.MatchedAt,
		MatchedBy:       d.MatchedBy,
		MatchNotes:      d.MatchNotes,
	}
	if ref, ok := d.MatchedRef(); ok {
		resp.MatchedRef = &ref
	}
	return resp
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(transactions []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = ToTransactionResponse(t)
	}
	return responses
}
