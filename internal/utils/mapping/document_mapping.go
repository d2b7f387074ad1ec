package mapping

import (
	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/models"
)

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		PartnerName:   m.PartnerName,
		PartnerIBAN:   m.PartnerIBAN,
		GrossAmount:   m.GrossAmount,
		Currency:      m.Currency,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Status:        domain.InvoiceStatus(m.Status),
	}
}

// ToDomainInvoiceSlice converts a slice of model Invoices to domain Invoices
func ToDomainInvoiceSlice(ms []models.Invoice) []domain.Invoice {
	ds := make([]domain.Invoice, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoice(m)
	}
	return ds
}

// ToDomainTransfer converts a model OutgoingTransfer to a domain OutgoingTransfer
func ToDomainTransfer(m models.OutgoingTransfer) domain.OutgoingTransfer {
	return domain.OutgoingTransfer{
		TransferID:      m.TransferID,
		Reference:       m.Reference,
		BeneficiaryName: m.BeneficiaryName,
		BeneficiaryIBAN: m.BeneficiaryIBAN,
		Amount:          m.Amount,
		Currency:        m.Currency,
		ExecutionDate:   m.ExecutionDate,
	}
}

// ToDomainTransferSlice converts a slice of model OutgoingTransfers to domain OutgoingTransfers
func ToDomainTransferSlice(ms []models.OutgoingTransfer) []domain.OutgoingTransfer {
	ds := make([]domain.OutgoingTransfer, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransfer(m)
	}
	return ds
}
