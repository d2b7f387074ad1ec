package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	"github.com/finadm/bank_recon_app/internal/models"
	"github.com/finadm/bank_recon_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOtherCostRepository struct {
	BaseRepository
}

// newPgxOtherCostRepository creates a new repository for other-cost records
// and category patterns.
func newPgxOtherCostRepository(pool *pgxpool.Pool) portsrepo.OtherCostRepositoryFacade {
	return &PgxOtherCostRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxOtherCostRepository implements portsrepo.OtherCostRepositoryFacade
var _ portsrepo.OtherCostRepositoryFacade = (*PgxOtherCostRepository)(nil)

const otherCostColumns = `other_cost_id, transaction_id, category, amount, currency, date,
	       description, notes, tags,
	       created_at, created_by, last_updated_at, last_updated_by`

// scanOtherCost scans one row in otherCostColumns order.
func scanOtherCost(row pgx.Row) (*models.OtherCost, error) {
	var m models.OtherCost
	var transactionID sql.NullString

	err := row.Scan(
		&m.OtherCostID,
		&transactionID,
		&m.Category,
		&m.Amount,
		&m.Currency,
		&m.Date,
		&m.Description,
		&m.Notes,
		&m.Tags,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if transactionID.Valid {
		m.TransactionID = &transactionID.String
	}
	return &m, nil
}

// SaveOtherCost persists a new other-cost record.
func (r *PgxOtherCostRepository) SaveOtherCost(ctx context.Context, cost domain.OtherCost) error {
	m := mapping.ToModelOtherCost(cost)
	query := `
		INSERT INTO other_costs (` + otherCostColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.OtherCostID,
		m.TransactionID,
		m.Category,
		m.Amount,
		m.Currency,
		m.Date,
		m.Description,
		m.Notes,
		m.Tags,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert other cost "+m.OtherCostID, err)
	}
	return nil
}

// FindOtherCostByTransactionID retrieves the categorization linked to a
// transaction, if any.
func (r *PgxOtherCostRepository) FindOtherCostByTransactionID(ctx context.Context, transactionID string) (*domain.OtherCost, error) {
	query := `
		SELECT ` + otherCostColumns + `
		FROM other_costs
		WHERE transaction_id = $1;
	`
	m, err := scanOtherCost(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find other cost for transaction "+transactionID, err)
	}

	d := mapping.ToDomainOtherCost(*m)
	return &d, nil
}

// ListOtherCostsByStatement retrieves the categorizations linked to a
// statement's transactions.
func (r *PgxOtherCostRepository) ListOtherCostsByStatement(ctx context.Context, statementID string) ([]domain.OtherCost, error) {
	query := `
		SELECT oc.other_cost_id, oc.transaction_id, oc.category, oc.amount, oc.currency, oc.date,
		       oc.description, oc.notes, oc.tags,
		       oc.created_at, oc.created_by, oc.last_updated_at, oc.last_updated_by
		FROM other_costs oc
		JOIN transactions t ON t.transaction_id = oc.transaction_id
		WHERE t.statement_id = $1
		ORDER BY oc.created_at ASC, oc.other_cost_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, statementID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list other costs for statement "+statementID, err)
	}
	defer rows.Close()

	var ms []models.OtherCost
	for rows.Next() {
		m, err := scanOtherCost(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan other cost row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating other cost rows", err)
	}

	return mapping.ToDomainOtherCostSlice(ms), nil
}

const categoryPatternColumns = `pattern_id, counterparty, category, use_count, last_used_at,
	       created_at, created_by, last_updated_at, last_updated_by`

// FindPatternByCounterparty looks up a learned pattern by normalized
// counterparty name.
func (r *PgxOtherCostRepository) FindPatternByCounterparty(ctx context.Context, counterparty string) (*domain.CategoryPattern, error) {
	query := `
		SELECT ` + categoryPatternColumns + `
		FROM category_patterns
		WHERE counterparty = $1;
	`
	var m models.CategoryPattern
	err := r.Pool.QueryRow(ctx, query, counterparty).Scan(
		&m.PatternID,
		&m.Counterparty,
		&m.Category,
		&m.UseCount,
		&m.LastUsedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find pattern for counterparty "+counterparty, err)
	}

	d := mapping.ToDomainCategoryPattern(m)
	return &d, nil
}

// UpsertPattern inserts the pattern or, when the counterparty is already
// known, adopts the latest category and accumulates the use count.
func (r *PgxOtherCostRepository) UpsertPattern(ctx context.Context, pattern domain.CategoryPattern) error {
	m := mapping.ToModelCategoryPattern(pattern)
	query := `
		INSERT INTO category_patterns (` + categoryPatternColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (counterparty) DO UPDATE
		SET category = EXCLUDED.category,
		    use_count = category_patterns.use_count + 1,
		    last_used_at = EXCLUDED.last_used_at,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PatternID,
		m.Counterparty,
		m.Category,
		m.UseCount,
		m.LastUsedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert pattern for counterparty "+m.Counterparty, err)
	}
	return nil
}
