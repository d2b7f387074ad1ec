package domain

import "github.com/shopspring/decimal"

// MatchMethod names the technique that produced a match, retained for audit.
type MatchMethod string

const (
	MethodNone              MatchMethod = ""
	MethodReferenceExact    MatchMethod = "REFERENCE_EXACT"
	MethodAmountIBAN        MatchMethod = "AMOUNT_IBAN"
	MethodFuzzyName         MatchMethod = "FUZZY_NAME"
	MethodTransferExact     MatchMethod = "TRANSFER_EXACT"
	MethodReimbursementPair MatchMethod = "REIMBURSEMENT_PAIR"
	MethodAmountDateOnly    MatchMethod = "AMOUNT_DATE_ONLY"
	MethodManual            MatchMethod = "MANUAL"
)

// methodTiers orders automatic methods by specificity; a lower tier wins ties.
// MANUAL is not proposed by the strategy, so it carries no tier.
var methodTiers = map[MatchMethod]int{
	MethodReferenceExact:    0,
	MethodAmountIBAN:        1,
	MethodTransferExact:     2,
	MethodReimbursementPair: 3,
	MethodFuzzyName:         4,
	MethodAmountDateOnly:    5,
}

// Tier returns the specificity tier of the method (0 is most specific).
// Unknown methods sort last.
func (m MatchMethod) Tier() int {
	if tier, ok := methodTiers[m]; ok {
		return tier
	}
	return len(methodTiers)
}

// IsValid reports whether the method is one of the recognized methods.
func (m MatchMethod) IsValid() bool {
	if m == MethodManual {
		return true
	}
	_, ok := methodTiers[m]
	return ok
}

// DocumentKind identifies which kind of accounting document a match points at.
type DocumentKind string

const (
	DocumentInvoice       DocumentKind = "INVOICE"
	DocumentTransfer      DocumentKind = "TRANSFER"
	DocumentReimbursement DocumentKind = "REIMBURSEMENT"
)

// IsValid reports whether the kind names a known document kind.
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentInvoice, DocumentTransfer, DocumentReimbursement:
		return true
	}
	return false
}

// DocumentRef is a tagged reference to exactly one accounting document.
type DocumentRef struct {
	Kind       DocumentKind `json:"kind"`
	DocumentID string       `json:"documentID"`
}

// IsZero reports whether the reference is empty.
func (r DocumentRef) IsZero() bool {
	return r.Kind == "" && r.DocumentID == ""
}

// MatchCandidate is one proposal from the matching strategy. Either Ref is set
// (single-document match) or InvoiceIDs is non-empty (batch match), never both.
type MatchCandidate struct {
	Ref        DocumentRef     `json:"ref"`
	InvoiceIDs []string        `json:"invoiceIDs,omitempty"`
	Method     MatchMethod     `json:"method"`
	Confidence decimal.Decimal `json:"confidence"`
}

// IsBatch reports whether the candidate proposes a multi-invoice match.
func (c MatchCandidate) IsBatch() bool {
	return len(c.InvoiceIDs) > 0
}

// BetterThan reports whether c outranks other: higher confidence first,
// then the more specific method tier. Corpus order never decides.
func (c MatchCandidate) BetterThan(other MatchCandidate) bool {
	if !c.Confidence.Equal(other.Confidence) {
		return c.Confidence.GreaterThan(other.Confidence)
	}
	return c.Method.Tier() < other.Method.Tier()
}
