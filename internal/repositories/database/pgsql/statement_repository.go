package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	"github.com/finadm/bank_recon_app/internal/models"
	"github.com/finadm/bank_recon_app/internal/utils/mapping"
	"github.com/finadm/bank_recon_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStatementRepository struct {
	BaseRepository
}

// newPgxStatementRepository creates a new repository for statement data.
func newPgxStatementRepository(pool *pgxpool.Pool) portsrepo.StatementRepositoryWithTx {
	return &PgxStatementRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxStatementRepository implements portsrepo.StatementRepositoryWithTx
var _ portsrepo.StatementRepositoryWithTx = (*PgxStatementRepository)(nil)

const statementColumns = `statement_id, bank_id, account_number, account_iban,
	       period_from, period_to, opening_balance, closing_balance,
	       file_name, file_hash, file_size, status, parse_error, parse_warnings,
	       total_count, credit_count, debit_count, matched_count,
	       created_at, created_by, last_updated_at, last_updated_by`

// scanStatement scans one row in statementColumns order.
func scanStatement(row pgx.Row) (*models.Statement, error) {
	var m models.Statement
	var parseError sql.NullString

	err := row.Scan(
		&m.StatementID,
		&m.BankID,
		&m.AccountNumber,
		&m.AccountIBAN,
		&m.PeriodFrom,
		&m.PeriodTo,
		&m.OpeningBalance,
		&m.ClosingBalance,
		&m.FileName,
		&m.FileHash,
		&m.FileSize,
		&m.Status,
		&parseError,
		&m.ParseWarnings,
		&m.TotalCount,
		&m.CreditCount,
		&m.DebitCount,
		&m.MatchedCount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if parseError.Valid {
		m.ParseError = &parseError.String
	}
	return &m, nil
}

// SaveStatement persists a newly uploaded statement.
func (r *PgxStatementRepository) SaveStatement(ctx context.Context, statement domain.Statement) error {
	m := mapping.ToModelStatement(statement)
	query := `
		INSERT INTO statements (` + statementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.StatementID,
		m.BankID,
		m.AccountNumber,
		m.AccountIBAN,
		m.PeriodFrom,
		m.PeriodTo,
		m.OpeningBalance,
		m.ClosingBalance,
		m.FileName,
		m.FileHash,
		m.FileSize,
		m.Status,
		m.ParseError,
		m.ParseWarnings,
		m.TotalCount,
		m.CreditCount,
		m.DebitCount,
		m.MatchedCount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert statement "+m.StatementID, err)
	}
	return nil
}

// FindStatementByID retrieves a specific statement by its unique identifier.
func (r *PgxStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	query := `
		SELECT ` + statementColumns + `
		FROM statements
		WHERE statement_id = $1;
	`
	m, err := scanStatement(r.Pool.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find statement by ID "+statementID, err)
	}

	d := mapping.ToDomainStatement(*m)
	return &d, nil
}

// FindAcceptedStatementByHash looks up a non-ERROR statement with the given
// file content hash for the given account.
func (r *PgxStatementRepository) FindAcceptedStatementByHash(ctx context.Context, accountNumber, fileHash string) (*domain.Statement, error) {
	query := `
		SELECT ` + statementColumns + `
		FROM statements
		WHERE account_number = $1 AND file_hash = $2 AND status <> 'ERROR'
		ORDER BY created_at ASC
		LIMIT 1;
	`
	m, err := scanStatement(r.Pool.QueryRow(ctx, query, accountNumber, fileHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find statement by hash", err)
	}

	d := mapping.ToDomainStatement(*m)
	return &d, nil
}

// ListStatements retrieves statements newest first using keyset pagination on
// (created_at, statement_id).
func (r *PgxStatementRepository) ListStatements(ctx context.Context, limit int, nextToken *string) ([]domain.Statement, *string, error) {
	args := []interface{}{limit + 1}
	query := `
		SELECT ` + statementColumns + `
		FROM statements
	`
	if nextToken != nil && *nextToken != "" {
		createdAt, statementID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		query += ` WHERE (created_at, statement_id) < ($2, $3)`
		args = append(args, createdAt, statementID)
	}
	query += `
		ORDER BY created_at DESC, statement_id DESC
		LIMIT $1;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list statements", err)
	}
	defer rows.Close()

	var ms []models.Statement
	for rows.Next() {
		m, err := scanStatement(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan statement row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating statement rows", err)
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.StatementID)
		token = &t
	}

	return mapping.ToDomainStatementSlice(ms), token, nil
}

// UpdateStatementStatus advances the parse lifecycle of a statement.
func (r *PgxStatementRepository) UpdateStatementStatus(ctx context.Context, statementID string, status domain.StatementStatus, parseError *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE statements
		SET status = $1, parse_error = $2, last_updated_at = $3, last_updated_by = $4
		WHERE statement_id = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, string(status), parseError, updatedAt, updatedBy, statementID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update statement status "+statementID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateStatementParsed writes the parsed metadata inside the given database
// transaction, together with the PARSED status.
func (r *PgxStatementRepository) UpdateStatementParsed(ctx context.Context, tx pgx.Tx, statement domain.Statement) error {
	m := mapping.ToModelStatement(statement)
	query := `
		UPDATE statements
		SET bank_id = $1,
		    account_number = $2,
		    account_iban = $3,
		    period_from = $4,
		    period_to = $5,
		    opening_balance = $6,
		    closing_balance = $7,
		    parse_warnings = $8,
		    status = $9,
		    last_updated_at = $10,
		    last_updated_by = $11
		WHERE statement_id = $12;
	`
	tag, err := tx.Exec(ctx, query,
		m.BankID,
		m.AccountNumber,
		m.AccountIBAN,
		m.PeriodFrom,
		m.PeriodTo,
		m.OpeningBalance,
		m.ClosingBalance,
		m.ParseWarnings,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.StatementID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update parsed statement "+m.StatementID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RefreshStatementCounters recomputes the aggregate counters from the owned
// transactions in one statement-scoped update.
func (r *PgxStatementRepository) RefreshStatementCounters(ctx context.Context, statementID string) error {
	query := `
		UPDATE statements s
		SET total_count = c.total,
		    credit_count = c.credits,
		    debit_count = c.debits,
		    matched_count = c.matched
		FROM (
			SELECT COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE amount > 0) AS credits,
			       COUNT(*) FILTER (WHERE amount < 0) AS debits,
			       COUNT(*) FILTER (WHERE matched_invoice_id IS NOT NULL
			                           OR matched_transfer_id IS NOT NULL
			                           OR matched_reimbursement_id IS NOT NULL
			                           OR is_batch_match) AS matched
			FROM transactions
			WHERE statement_id = $1
		) c
		WHERE s.statement_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, statementID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to refresh counters for statement "+statementID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
