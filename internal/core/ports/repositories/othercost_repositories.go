package repositories

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
)

// OtherCostReader defines read operations for other-cost records
type OtherCostReader interface {
	// FindOtherCostByTransactionID retrieves the categorization linked to a
	// transaction, if any.
	FindOtherCostByTransactionID(ctx context.Context, transactionID string) (*domain.OtherCost, error)

	// ListOtherCostsByStatement retrieves the categorizations linked to a
	// statement's transactions.
	ListOtherCostsByStatement(ctx context.Context, statementID string) ([]domain.OtherCost, error)
}

// OtherCostWriter defines write operations for other-cost records
type OtherCostWriter interface {
	// SaveOtherCost persists a new other-cost record.
	SaveOtherCost(ctx context.Context, cost domain.OtherCost) error
}

// CategoryPatternRepository manages the learned auto-categorization patterns.
type CategoryPatternRepository interface {
	// FindPatternByCounterparty looks up a learned pattern by normalized
	// counterparty name.
	FindPatternByCounterparty(ctx context.Context, counterparty string) (*domain.CategoryPattern, error)

	// UpsertPattern inserts the pattern or, when the counterparty is already
	// known, bumps its use count and category.
	UpsertPattern(ctx context.Context, pattern domain.CategoryPattern) error
}

// OtherCostRepositoryFacade combines all other-cost repository interfaces
type OtherCostRepositoryFacade interface {
	OtherCostReader
	OtherCostWriter
	CategoryPatternRepository
}
