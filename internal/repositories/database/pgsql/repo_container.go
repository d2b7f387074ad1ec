package pgsql

import (
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	statementRepo := newPgxStatementRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	documentRepo := newPgxDocumentRepository(dbPool)
	otherCostRepo := newPgxOtherCostRepository(dbPool)

	return portsrepo.RepositoryProvider{
		StatementRepo:   statementRepo,
		TransactionRepo: transactionRepo,
		DocumentRepo:    documentRepo,
		OtherCostRepo:   otherCostRepo,
	}
}
