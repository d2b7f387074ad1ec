package mapping

import (
	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:          d.TransactionID,
		StatementID:            d.StatementID,
		Type:                   string(d.Type),
		BookingDate:            d.BookingDate,
		ValueDate:              d.ValueDate,
		Amount:                 d.Amount,
		Currency:               d.Currency,
		Description:            d.Description,
		Reference:              d.Reference,
		PayerName:              d.PayerName,
		PayerIBAN:              d.PayerIBAN,
		PayerAccountNo:         d.PayerAccountNo,
		PayerBIC:               d.PayerBIC,
		BeneficiaryName:        d.BeneficiaryName,
		BeneficiaryIBAN:        d.BeneficiaryIBAN,
		BeneficiaryAccNo:       d.BeneficiaryAccNo,
		BeneficiaryBIC:         d.BeneficiaryBIC,
		MatchedInvoiceID:       d.MatchedInvoiceID,
		MatchedTransferID:      d.MatchedTransferID,
		MatchedReimbursementID: d.MatchedReimbursementID,
		IsBatchMatch:           d.IsBatchMatch,
		BatchInvoiceIDs:        d.BatchInvoiceIDs,
		MatchConfidence:        d.MatchConfidence,
		MatchMethod:            string(d.MatchMethod),
		MatchedAt:              d.MatchedAt,
		MatchedBy:              d.MatchedBy,
		ApprovedAt:             d.ApprovedAt,
		ApprovedBy:             d.ApprovedBy,
		MatchNotes:             d.MatchNotes,
		Version:                d.Version,
		AuditFields:            ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:          m.TransactionID,
		StatementID:            m.StatementID,
		Type:                   domain.TransactionType(m.Type),
		BookingDate:            m.BookingDate,
		ValueDate:              m.ValueDate,
		Amount:                 m.Amount,
		Currency:               m.Currency,
		Description:            m.Description,
		Reference:              m.Reference,
		PayerName:              m.PayerName,
		PayerIBAN:              m.PayerIBAN,
		PayerAccountNo:         m.PayerAccountNo,
		PayerBIC:               m.PayerBIC,
		BeneficiaryName:        m.BeneficiaryName,
		BeneficiaryIBAN:        m.BeneficiaryIBAN,
		BeneficiaryAccNo:       m.BeneficiaryAccNo,
		BeneficiaryBIC:         m.BeneficiaryBIC,
		MatchedInvoiceID:       m.MatchedInvoiceID,
		MatchedTransferID:      m.MatchedTransferID,
		MatchedReimbursementID: m.MatchedReimbursementID,
		IsBatchMatch:           m.IsBatchMatch,
		BatchInvoiceIDs:        m.BatchInvoiceIDs,
		MatchConfidence:        m.MatchConfidence,
		MatchMethod:            domain.MatchMethod(m.MatchMethod),
		MatchedAt:              m.MatchedAt,
		MatchedBy:              m.MatchedBy,
		ApprovedAt:             m.ApprovedAt,
		ApprovedBy:             m.ApprovedBy,
		MatchNotes:             m.MatchNotes,
		Version:                m.Version,
		AuditFields:            ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
