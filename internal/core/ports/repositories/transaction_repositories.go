package repositories

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for statement transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a single transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIDForUpdate retrieves a transaction with a row lock held
	// for the duration of the given database transaction. Concurrent operations
	// against the same row serialize on this lock.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByStatement retrieves all transactions owned by a statement,
	// ordered by booking date then creation time.
	ListTransactionsByStatement(ctx context.Context, statementID string) ([]domain.Transaction, error)

	// ListReimbursementCandidates retrieves unmatched transactions with the
	// opposite direction of the given transaction, eligible as the other half
	// of a reimbursement pair.
	ListReimbursementCandidates(ctx context.Context, transaction domain.Transaction) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for statement transactions
type TransactionWriter interface {
	// SaveTransactions bulk-inserts the transactions parsed from one statement.
	// Called exactly once per statement by the ingestion flow.
	SaveTransactions(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error

	// UpdateTransactionMatch persists the match fields of a transaction using
	// optimistic locking on its version counter. Returns apperrors.ErrConflict
	// when the stored version no longer matches.
	UpdateTransactionMatch(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends the facade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
