package dto

import (
	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MatchRequest is the payload for matching a transaction to a single document.
type MatchRequest struct {
	DocumentKind domain.DocumentKind `json:"documentKind" binding:"required,documentkind"`
	DocumentID   string              `json:"documentID" binding:"required"`
	Method       domain.MatchMethod  `json:"method" binding:"required,matchmethod"`
	Confidence   decimal.Decimal     `json:"confidence"`
	Notes        string              `json:"notes"`
}

// BatchMatchRequest is the payload for matching a transaction to several invoices
// paid by one bulk payment. Reconciling the invoice amounts against the
// transaction amount is the caller's responsibility; the engine only records it.
type BatchMatchRequest struct {
	InvoiceIDs []string           `json:"invoiceIDs" binding:"required,min=1"`
	Method     domain.MatchMethod `json:"method" binding:"required,matchmethod"`
	Confidence decimal.Decimal    `json:"confidence"`
	Notes      string             `json:"notes"`
}

// ApproveMatchResponse reports the confidence change of an approval.
type ApproveMatchResponse struct {
	PreviousConfidence decimal.Decimal `json:"previousConfidence"`
	NewConfidence      decimal.Decimal `json:"newConfidence"`
}

// UnmatchResponse reports how many documents were detached: 1 for a single
// match, N for a batch match, 0 when the transaction was already unmatched.
type UnmatchResponse struct {
	DocumentsDetached int `json:"documentsDetached"`
}

// RematchResponse reports the outcome of re-running the matching strategy.
// Matched=false is a normal outcome, not a failure.
type RematchResponse struct {
	Matched    bool                `json:"matched"`
	Ref        *domain.DocumentRef `json:"ref,omitempty"`
	InvoiceIDs []string            `json:"invoiceIDs,omitempty"`
	Method     domain.MatchMethod  `json:"method,omitempty"`
	Confidence *decimal.Decimal    `json:"confidence,omitempty"`
}
