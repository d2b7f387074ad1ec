package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus indicates whether an invoice is still awaiting payment.
type InvoiceStatus string

const (
	InvoiceOpen InvoiceStatus = "OPEN"
	InvoicePaid InvoiceStatus = "PAID"
)

// Invoice is a read-only view of an accounting invoice used as a match target.
// Payment-status updates on the invoice side are handled by an external
// collaborator reacting to match events, never by this service.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	PartnerName   string          `json:"partnerName"`
	PartnerIBAN   string          `json:"partnerIBAN"`
	GrossAmount   decimal.Decimal `json:"grossAmount"`
	Currency      string          `json:"currency"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	Status        InvoiceStatus   `json:"status"`
}

// OutgoingTransfer is a read-only view of a generated bank transfer order,
// used to match debit statement lines against what we actually sent.
type OutgoingTransfer struct {
	TransferID      string          `json:"transferID"`
	Reference       string          `json:"reference"`
	BeneficiaryName string          `json:"beneficiaryName"`
	BeneficiaryIBAN string          `json:"beneficiaryIBAN"`
	Amount          decimal.Decimal `json:"amount"` // positive, direction implied
	Currency        string          `json:"currency"`
	ExecutionDate   time.Time       `json:"executionDate"`
}

// MatchCorpus is the bounded candidate set handed to the matching strategy:
// open invoices, open outgoing transfers, and transactions eligible as the
// other half of a reimbursement pair.
type MatchCorpus struct {
	OpenInvoices   []Invoice
	OpenTransfers  []OutgoingTransfer
	Reimbursements []Transaction
}
