package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	"github.com/finadm/bank_recon_app/internal/models"
	"github.com/finadm/bank_recon_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for statement transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, statement_id, type, booking_date, value_date, amount, currency,
	       description, reference,
	       payer_name, payer_iban, payer_account_no, payer_bic,
	       beneficiary_name, beneficiary_iban, beneficiary_acc_no, beneficiary_bic,
	       matched_invoice_id, matched_transfer_id, matched_reimbursement_id,
	       is_batch_match, batch_invoice_ids, match_confidence, match_method,
	       matched_at, matched_by, approved_at, approved_by, match_notes, version,
	       created_at, created_by, last_updated_at, last_updated_by`

// scanTransaction scans one row in transactionColumns order.
func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	var matchedInvoiceID, matchedTransferID, matchedReimbursementID sql.NullString
	var matchedBy, approvedBy sql.NullString
	var matchedAt, approvedAt sql.NullTime

	err := row.Scan(
		&m.TransactionID,
		&m.StatementID,
		&m.Type,
		&m.BookingDate,
		&m.ValueDate,
		&m.Amount,
		&m.Currency,
		&m.Description,
		&m.Reference,
		&m.PayerName,
		&m.PayerIBAN,
		&m.PayerAccountNo,
		&m.PayerBIC,
		&m.BeneficiaryName,
		&m.BeneficiaryIBAN,
		&m.BeneficiaryAccNo,
		&m.BeneficiaryBIC,
		&matchedInvoiceID,
		&matchedTransferID,
		&matchedReimbursementID,
		&m.IsBatchMatch,
		&m.BatchInvoiceIDs,
		&m.MatchConfidence,
		&m.MatchMethod,
		&matchedAt,
		&matchedBy,
		&approvedAt,
		&approvedBy,
		&m.MatchNotes,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if matchedInvoiceID.Valid {
		m.MatchedInvoiceID = &matchedInvoiceID.String
	}
	if matchedTransferID.Valid {
		m.MatchedTransferID = &matchedTransferID.String
	}
	if matchedReimbursementID.Valid {
		m.MatchedReimbursementID = &matchedReimbursementID.String
	}
	if matchedAt.Valid {
		m.MatchedAt = &matchedAt.Time
	}
	if matchedBy.Valid {
		m.MatchedBy = &matchedBy.String
	}
	if approvedAt.Valid {
		m.ApprovedAt = &approvedAt.Time
	}
	if approvedBy.Valid {
		m.ApprovedBy = &approvedBy.String
	}
	return &m, nil
}

// FindTransactionByID retrieves a single transaction by its unique identifier.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	d := mapping.ToDomainTransaction(*m)
	return &d, nil
}

// FindTransactionByIDForUpdate retrieves a transaction holding a row lock for
// the duration of the database transaction. Concurrent match operations against
// the same row serialize here.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1
		FOR UPDATE;
	`
	m, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}

	d := mapping.ToDomainTransaction(*m)
	return &d, nil
}

// ListTransactionsByStatement retrieves all transactions owned by a statement.
func (r *PgxTransactionRepository) ListTransactionsByStatement(ctx context.Context, statementID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE statement_id = $1
		ORDER BY booking_date ASC, created_at ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, statementID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list transactions for statement "+statementID, err)
	}
	defer rows.Close()

	var ms []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	return mapping.ToDomainTransactionSlice(ms), nil
}

// ListReimbursementCandidates retrieves unmatched transactions eligible as the
// other half of a reimbursement pair: opposite direction, same absolute
// amount, same currency.
func (r *PgxTransactionRepository) ListReimbursementCandidates(ctx context.Context, transaction domain.Transaction) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id <> $1
		  AND currency = $2
		  AND amount = -$3
		  AND matched_invoice_id IS NULL
		  AND matched_transfer_id IS NULL
		  AND matched_reimbursement_id IS NULL
		  AND is_batch_match = FALSE
		ORDER BY booking_date ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, transaction.TransactionID, transaction.Currency, transaction.Amount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list reimbursement candidates", err)
	}
	defer rows.Close()

	var ms []models.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	return mapping.ToDomainTransactionSlice(ms), nil
}

// SaveTransactions bulk-inserts the transactions parsed from one statement.
func (r *PgxTransactionRepository) SaveTransactions(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34);
	`
	batch := &pgx.Batch{}
	for _, d := range transactions {
		m := mapping.ToModelTransaction(d)
		batch.Queue(query,
			m.TransactionID,
			m.StatementID,
			m.Type,
			m.BookingDate,
			m.ValueDate,
			m.Amount,
			m.Currency,
			m.Description,
			m.Reference,
			m.PayerName,
			m.PayerIBAN,
			m.PayerAccountNo,
			m.PayerBIC,
			m.BeneficiaryName,
			m.BeneficiaryIBAN,
			m.BeneficiaryAccNo,
			m.BeneficiaryBIC,
			m.MatchedInvoiceID,
			m.MatchedTransferID,
			m.MatchedReimbursementID,
			m.IsBatchMatch,
			m.BatchInvoiceIDs,
			m.MatchConfidence,
			m.MatchMethod,
			m.MatchedAt,
			m.MatchedBy,
			m.ApprovedAt,
			m.ApprovedBy,
			m.MatchNotes,
			m.Version,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range transactions {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to bulk-insert transactions", err)
		}
	}
	return nil
}

// UpdateTransactionMatch persists the match fields using optimistic locking on
// the version counter. The stored version must equal the version the caller
// read; the update bumps it by one.
func (r *PgxTransactionRepository) UpdateTransactionMatch(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	m := mapping.ToModelTransaction(transaction)
	query := `
		UPDATE transactions
		SET matched_invoice_id = $1,
		    matched_transfer_id = $2,
		    matched_reimbursement_id = $3,
		    is_batch_match = $4,
		    batch_invoice_ids = $5,
		    match_confidence = $6,
		    match_method = $7,
		    matched_at = $8,
		    matched_by = $9,
		    approved_at = $10,
		    approved_by = $11,
		    match_notes = $12,
		    version = version + 1,
		    last_updated_at = $13,
		    last_updated_by = $14
		WHERE transaction_id = $15 AND version = $16;
	`
	tag, err := tx.Exec(ctx, query,
		m.MatchedInvoiceID,
		m.MatchedTransferID,
		m.MatchedReimbursementID,
		m.IsBatchMatch,
		m.BatchInvoiceIDs,
		m.MatchConfidence,
		m.MatchMethod,
		m.MatchedAt,
		m.MatchedBy,
		m.ApprovedAt,
		m.ApprovedBy,
		m.MatchNotes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.TransactionID,
		m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction match "+m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s was modified concurrently", apperrors.ErrConflict, m.TransactionID)
	}
	return nil
}
