package mapping

import (
	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/models"
)

// ToModelStatement converts a domain Statement to a model Statement
func ToModelStatement(d domain.Statement) models.Statement {
	return models.Statement{
		StatementID:    d.StatementID,
		BankID:         d.BankID,
		AccountNumber:  d.AccountNumber,
		AccountIBAN:    d.AccountIBAN,
		PeriodFrom:     d.PeriodFrom,
		PeriodTo:       d.PeriodTo,
		OpeningBalance: d.OpeningBalance,
		ClosingBalance: d.ClosingBalance,
		FileName:       d.FileName,
		FileHash:       d.FileHash,
		FileSize:       d.FileSize,
		Status:         models.StatementStatus(d.Status),
		ParseError:     d.ParseError,
		ParseWarnings:  d.ParseWarnings,
		TotalCount:     d.TotalCount,
		CreditCount:    d.CreditCount,
		DebitCount:     d.DebitCount,
		MatchedCount:   d.MatchedCount,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStatement converts a model Statement to a domain Statement
func ToDomainStatement(m models.Statement) domain.Statement {
	return domain.Statement{
		StatementID:    m.StatementID,
		BankID:         m.BankID,
		AccountNumber:  m.AccountNumber,
		AccountIBAN:    m.AccountIBAN,
		PeriodFrom:     m.PeriodFrom,
		PeriodTo:       m.PeriodTo,
		OpeningBalance: m.OpeningBalance,
		ClosingBalance: m.ClosingBalance,
		FileName:       m.FileName,
		FileHash:       m.FileHash,
		FileSize:       m.FileSize,
		Status:         domain.StatementStatus(m.Status),
		ParseError:     m.ParseError,
		ParseWarnings:  m.ParseWarnings,
		TotalCount:     m.TotalCount,
		CreditCount:    m.CreditCount,
		DebitCount:     m.DebitCount,
		MatchedCount:   m.MatchedCount,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStatementSlice converts a slice of model Statements to domain Statements
func ToDomainStatementSlice(ms []models.Statement) []domain.Statement {
	ds := make([]domain.Statement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStatement(m)
	}
	return ds
}
