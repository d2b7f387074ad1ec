package dto

import (
	"time"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FileUpload is one uploaded statement file handed to the ingestion flow.
type FileUpload struct {
	FileName string
	Content  []byte
}

// ParsedTransaction is one statement line as returned by the external parser
// service. It carries no match state; matching starts at UNMATCHED.
type ParsedTransaction struct {
	Type             domain.TransactionType `json:"type"`
	BookingDate      time.Time              `json:"bookingDate"`
	ValueDate        time.Time              `json:"valueDate"`
	Amount           decimal.Decimal        `json:"amount"`
	Currency         string                 `json:"currency"`
	Description      string                 `json:"description"`
	Reference        string                 `json:"reference"`
	PayerName        string                 `json:"payerName"`
	PayerIBAN        string                 `json:"payerIBAN"`
	PayerAccountNo   string                 `json:"payerAccountNo"`
	PayerBIC         string                 `json:"payerBIC"`
	BeneficiaryName  string                 `json:"beneficiaryName"`
	BeneficiaryIBAN  string                 `json:"beneficiaryIBAN"`
	BeneficiaryAccNo string                 `json:"beneficiaryAccNo"`
	BeneficiaryBIC   string                 `json:"beneficiaryBIC"`
}

// ParsedStatement is the parser service's result for one file.
type ParsedStatement struct {
	BankID         string              `json:"bankID"`
	AccountNumber  string              `json:"accountNumber"`
	AccountIBAN    string              `json:"accountIBAN"`
	PeriodFrom     time.Time           `json:"periodFrom"`
	PeriodTo       time.Time           `json:"periodTo"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	ClosingBalance decimal.Decimal     `json:"closingBalance"`
	Warnings       []string            `json:"warnings,omitempty"`
	Transactions   []ParsedTransaction `json:"transactions"`
}

// FileUploadResult reports the outcome of one file within a batch upload.
type FileUploadResult struct {
	FileName    string  `json:"fileName"`
	StatementID *string `json:"statementID,omitempty"`
	Succeeded   bool    `json:"succeeded"`
	Error       *string `json:"error,omitempty"`
}

// BatchUploadResult aggregates per-file outcomes of a sequential batch upload.
type BatchUploadResult struct {
	Results   []FileUploadResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// ListStatementsParams holds pagination parameters for listing statements.
type ListStatementsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// StatementResponse is the API representation of an uploaded statement.
type StatementResponse struct {
	StatementID    string                 `json:"statementID"`
	BankID         string                 `json:"bankID"`
	AccountNumber  string                 `json:"accountNumber"`
	AccountIBAN    string                 `json:"accountIBAN"`
	PeriodFrom     time.Time              `json:"periodFrom"`
	PeriodTo       time.Time              `json:"periodTo"`
	OpeningBalance decimal.Decimal        `json:"openingBalance"`
	ClosingBalance decimal.Decimal        `json:"closingBalance"`
	FileName       string                 `json:"fileName"`
	Status         domain.StatementStatus `json:"status"`
	ParseError     *string                `json:"parseError,omitempty"`
	ParseWarnings  []string               `json:"parseWarnings,omitempty"`
	TotalCount     int                    `json:"totalCount"`
	CreditCount    int                    `json:"creditCount"`
	DebitCount     int                    `json:"debitCount"`
	MatchedCount   int                    `json:"matchedCount"`
	UploadedAt     time.Time              `json:"uploadedAt"`
}

// ToStatementResponse converts a domain statement to its API representation.
func ToStatementResponse(d domain.Statement) StatementResponse {
	return StatementResponse{
		StatementID:    d.StatementID,
		BankID:         d.BankID,
		AccountNumber:  d.AccountNumber,
		AccountIBAN:    d.AccountIBAN,
		PeriodFrom:     d.PeriodFrom,
		PeriodTo:       d.PeriodTo,
		OpeningBalance: d.OpeningBalance,
		ClosingBalance: d.ClosingBalance,
		FileName:       d.FileName,
		Status:         d.Status,
		ParseError:     d.ParseError,
		ParseWarnings:  d.ParseWarnings,
		TotalCount:     d.TotalCount,
		CreditCount:    d.CreditCount,
		DebitCount:     d.DebitCount,
		MatchedCount:   d.MatchedCount,
		UploadedAt:     d.CreatedAt,
	}
}

// ListStatementsResponse is a paginated list of statements.
type ListStatementsResponse struct {
	Statements []StatementResponse `json:"statements"`
	NextToken  *string             `json:"nextToken,omitempty"`
}

// StatementSummary reports the three distinct resolution channels of a
// statement's transactions. The channels are never conflated.
type StatementSummary struct {
	Total           int `json:"total"`
	DocumentMatched int `json:"documentMatched"`
	OtherCost       int `json:"otherCost"`
	AutoCategorized int `json:"autoCategorized"`
	Unresolved      int `json:"unresolved"`
}
