package repositories

import (
	"context"
	"time"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// StatementReader defines read operations for statement data
type StatementReader interface {
	// FindStatementByID retrieves a specific statement by its unique identifier.
	FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error)

	// FindAcceptedStatementByHash looks up a non-ERROR statement with the given
	// file content hash for the given account. Used for duplicate-upload detection.
	FindAcceptedStatementByHash(ctx context.Context, accountNumber, fileHash string) (*domain.Statement, error)

	// ListStatements retrieves a paginated list of statements using token-based
	// pagination, newest first. Returns the statements, a token for the next
	// page, and an error.
	ListStatements(ctx context.Context, limit int, nextToken *string) ([]domain.Statement, *string, error)
}

// StatementWriter defines write operations for statement data
type StatementWriter interface {
	// SaveStatement persists a newly uploaded statement.
	SaveStatement(ctx context.Context, statement domain.Statement) error

	// UpdateStatementStatus advances the parse lifecycle of a statement.
	UpdateStatementStatus(ctx context.Context, statementID string, status domain.StatementStatus, parseError *string, updatedBy string, updatedAt time.Time) error

	// UpdateStatementParsed writes the parsed metadata (period, balances,
	// warnings) inside the given database transaction.
	UpdateStatementParsed(ctx context.Context, tx pgx.Tx, statement domain.Statement) error

	// RefreshStatementCounters recomputes the aggregate counters of a statement
	// from its owned transactions. Counters are never hand-edited.
	RefreshStatementCounters(ctx context.Context, statementID string) error
}

// StatementRepositoryFacade combines all statement repository interfaces
type StatementRepositoryFacade interface {
	StatementReader
	StatementWriter
}

// StatementRepositoryWithTx extends the facade with transaction capabilities
type StatementRepositoryWithTx interface {
	StatementRepositoryFacade
	TransactionManager
}
