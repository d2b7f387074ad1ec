package pgsql

import (
	"context"
	"errors"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	"github.com/finadm/bank_recon_app/internal/models"
	"github.com/finadm/bank_recon_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDocumentRepository reads the replicated accounting document views. The
// invoices and outgoing_transfers tables are maintained by an external
// synchronization job; this repository never writes them.
type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new read-only repository for documents.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryFacade
var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

const invoiceColumns = `invoice_id, invoice_number, partner_name, partner_iban,
	       gross_amount, currency, issue_date, due_date, status`

const transferColumns = `transfer_id, reference, beneficiary_name, beneficiary_iban,
	       amount, currency, execution_date`

// scanInvoice scans one row in invoiceColumns order.
func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.InvoiceNumber,
		&m.PartnerName,
		&m.PartnerIBAN,
		&m.GrossAmount,
		&m.Currency,
		&m.IssueDate,
		&m.DueDate,
		&m.Status,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// scanTransfer scans one row in transferColumns order.
func scanTransfer(row pgx.Row) (*models.OutgoingTransfer, error) {
	var m models.OutgoingTransfer
	err := row.Scan(
		&m.TransferID,
		&m.Reference,
		&m.BeneficiaryName,
		&m.BeneficiaryIBAN,
		&m.Amount,
		&m.Currency,
		&m.ExecutionDate,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindInvoiceByID retrieves one invoice.
func (r *PgxDocumentRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE invoice_id = $1;
	`
	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice by ID "+invoiceID, err)
	}

	d := mapping.ToDomainInvoice(*m)
	return &d, nil
}

// FindInvoicesByIDs retrieves multiple invoices keyed by ID. Missing IDs are
// absent from the map, the caller decides whether that is an error.
func (r *PgxDocumentRepository) FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	if len(invoiceIDs) == 0 {
		return map[string]domain.Invoice{}, nil
	}

	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE invoice_id = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find invoices by IDs", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Invoice, len(invoiceIDs))
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice row", err)
		}
		result[m.InvoiceID] = mapping.ToDomainInvoice(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}

	return result, nil
}

// ListOpenInvoices retrieves invoices still awaiting payment in the given currency.
func (r *PgxDocumentRepository) ListOpenInvoices(ctx context.Context, currency string) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status = 'OPEN' AND currency = $1
		ORDER BY due_date ASC, invoice_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, currency)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list open invoices", err)
	}
	defer rows.Close()

	var ms []models.Invoice
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}

	return mapping.ToDomainInvoiceSlice(ms), nil
}

// FindTransferByID retrieves one outgoing transfer order.
func (r *PgxDocumentRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.OutgoingTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM outgoing_transfers
		WHERE transfer_id = $1;
	`
	m, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transfer by ID "+transferID, err)
	}

	d := mapping.ToDomainTransfer(*m)
	return &d, nil
}

// ListOpenTransfers retrieves outgoing transfers not yet reconciled against a
// statement line, in the given currency.
func (r *PgxDocumentRepository) ListOpenTransfers(ctx context.Context, currency string) ([]domain.OutgoingTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM outgoing_transfers t
		WHERE t.currency = $1
		  AND NOT EXISTS (
			SELECT 1 FROM transactions x WHERE x.matched_transfer_id = t.transfer_id
		  )
		ORDER BY t.execution_date ASC, t.transfer_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, currency)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list open transfers", err)
	}
	defer rows.Close()

	var ms []models.OutgoingTransfer
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transfer row", err)
		}
		ms = append(ms, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transfer rows", err)
	}

	return mapping.ToDomainTransferSlice(ms), nil
}
