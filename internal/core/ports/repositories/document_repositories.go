package repositories

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
)

// DocumentReader defines read-only access to the accounting documents that
// transactions are matched against. This service never mutates them.
type DocumentReader interface {
	// FindInvoiceByID retrieves one invoice.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoicesByIDs retrieves multiple invoices keyed by ID. Missing IDs are
	// simply absent from the map.
	FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error)

	// ListOpenInvoices retrieves invoices still awaiting payment in the given currency.
	ListOpenInvoices(ctx context.Context, currency string) ([]domain.Invoice, error)

	// FindTransferByID retrieves one outgoing transfer order.
	FindTransferByID(ctx context.Context, transferID string) (*domain.OutgoingTransfer, error)

	// ListOpenTransfers retrieves outgoing transfers not yet reconciled against
	// a statement line, in the given currency.
	ListOpenTransfers(ctx context.Context, currency string) ([]domain.OutgoingTransfer, error)
}

// DocumentRepositoryFacade is the facade for document lookups.
type DocumentRepositoryFacade interface {
	DocumentReader
}
