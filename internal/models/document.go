package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the read-only invoice view replicated from the accounting system.
type Invoice struct {
	InvoiceID     string          `db:"invoice_id"`
	InvoiceNumber string          `db:"invoice_number"`
	PartnerName   string          `db:"partner_name"`
	PartnerIBAN   string          `db:"partner_iban"`
	GrossAmount   decimal.Decimal `db:"gross_amount"`
	Currency      string          `db:"currency"`
	IssueDate     time.Time       `db:"issue_date"`
	DueDate       time.Time       `db:"due_date"`
	Status        string          `db:"status"`
}

// OutgoingTransfer is the read-only transfer-order view replicated from the
// payment system.
type OutgoingTransfer struct {
	TransferID      string          `db:"transfer_id"`
	Reference       string          `db:"reference"`
	BeneficiaryName string          `db:"beneficiary_name"`
	BeneficiaryIBAN string          `db:"beneficiary_iban"`
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	ExecutionDate   time.Time       `db:"execution_date"`
}
