package services

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/dto"
)

// ReconWriterSvc defines the four reconciliation operations of the engine.
// Each call is one atomic operation scoped to one transaction row; a nil
// operatorID means the mutation is system-automatic.
type ReconWriterSvc interface {
	// Match records a single-document match on an unmatched transaction.
	// Repeating the identical current match succeeds without change; a
	// different existing match is rejected, matching is never implicitly
	// destructive.
	Match(ctx context.Context, transactionID string, req dto.MatchRequest, operatorID *string) (*domain.Transaction, error)

	// BatchMatch records a multi-invoice match on an unmatched transaction.
	BatchMatch(ctx context.Context, transactionID string, req dto.BatchMatchRequest, operatorID *string) (*domain.Transaction, error)

	// ApproveMatch raises a sub-1.00 match to operator-asserted certainty.
	ApproveMatch(ctx context.Context, transactionID string, approverID string) (*dto.ApproveMatchResponse, error)

	// Unmatch clears the current match and reports how many documents were
	// detached. Retrying against an already-unmatched transaction succeeds
	// with a zero count.
	Unmatch(ctx context.Context, transactionID string, operatorID *string) (*dto.UnmatchResponse, error)

	// Rematch clears any current match and re-runs the matching strategy.
	// No candidate is a normal outcome reported as Matched=false.
	Rematch(ctx context.Context, transactionID string, operatorID *string) (*dto.RematchResponse, error)
}

// ReconReaderSvc defines read operations over the reconciliation corpus.
type ReconReaderSvc interface {
	// ListTransactions returns a statement's transactions projected through the
	// given filter and sort criteria.
	ListTransactions(ctx context.Context, statementID string, params dto.ListTransactionsParams) ([]dto.TransactionResponse, error)
}

// ReconSvcFacade combines the reconciliation engine interfaces.
type ReconSvcFacade interface {
	ReconWriterSvc
	ReconReaderSvc
}
