package dto

import (
	"time"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CategorizeRequest marks a transaction as a non-reconcilable other cost.
type CategorizeRequest struct {
	Category    domain.OtherCostCategory `json:"category" binding:"required"`
	Description string                   `json:"description"` // defaults to the transaction description
	Notes       string                   `json:"notes"`
	Tags        []string                 `json:"tags"`
}

// StandaloneOtherCostRequest records a cost with no backing statement
// transaction.
type StandaloneOtherCostRequest struct {
	Category    domain.OtherCostCategory `json:"category" binding:"required"`
	Amount      decimal.Decimal          `json:"amount" binding:"required"`
	Currency    string                   `json:"currency" binding:"required,len=3"`
	Date        time.Time                `json:"date" binding:"required"`
	Description string                   `json:"description" binding:"required"`
	Notes       string                   `json:"notes"`
	Tags        []string                 `json:"tags"`
}

// OtherCostResponse is the API representation of an other-cost record.
type OtherCostResponse struct {
	OtherCostID   string                   `json:"otherCostID"`
	TransactionID *string                  `json:"transactionID,omitempty"`
	Category      domain.OtherCostCategory `json:"category"`
	Amount        decimal.Decimal          `json:"amount"`
	Currency      string                   `json:"currency"`
	Date          time.Time                `json:"date"`
	Description   string                   `json:"description"`
	Notes         string                   `json:"notes,omitempty"`
	Tags          []string                 `json:"tags,omitempty"`
}

// ToOtherCostResponse converts a domain other cost to its API representation.
func ToOtherCostResponse(d domain.OtherCost) OtherCostResponse {
	return OtherCostResponse{
		OtherCostID:   d.OtherCostID,
		TransactionID: d.TransactionID,
		Category:      d.Category,
		Amount:        d.Amount,
		Currency:      d.Currency,
		Date:          d.Date,
		Description:   d.Description,
		Notes:         d.Notes,
		Tags:          d.Tags,
	}
}

// CategorySuggestionResponse is a learned categorization suggestion for a
// transaction, keyed by its counterparty.
type CategorySuggestionResponse struct {
	Counterparty string                   `json:"counterparty"`
	Category     domain.OtherCostCategory `json:"category"`
	UseCount     int                      `json:"useCount"`
}
