package services

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/dto"
)

// OtherCostSvcFacade is the categorization sidecar: a secondary flow resolving
// unmatched transactions as non-reconcilable costs, orthogonal to matching.
type OtherCostSvcFacade interface {
	// Categorize records an other-cost for a transaction and seeds the learned
	// pattern for its counterparty. The transaction's match state is untouched.
	Categorize(ctx context.Context, transactionID string, req dto.CategorizeRequest, operatorID string) (*domain.OtherCost, error)

	// CreateStandalone records an other-cost with no backing statement
	// transaction, for costs that never appear on a bank statement.
	CreateStandalone(ctx context.Context, req dto.StandaloneOtherCostRequest, operatorID string) (*domain.OtherCost, error)

	// SuggestCategory returns the learned pattern for the transaction's
	// counterparty, or ErrNotFound when nothing has been learned yet.
	SuggestCategory(ctx context.Context, transactionID string) (*domain.CategoryPattern, error)
}
