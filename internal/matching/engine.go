package matching

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Engine is the default MatchProposer implementation.
type Engine struct {
	cfg Config
}

// NewEngine creates a matching engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

var _ portssvc.MatchProposer = (*Engine)(nil)

// Propose scans the bounded corpus and returns every candidate at or above the
// configured minimum confidence, ordered best first (confidence, then tier,
// then document id). The ordering is deterministic regardless of corpus order.
func (e *Engine) Propose(ctx context.Context, txn domain.Transaction, corpus domain.MatchCorpus) ([]domain.MatchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []domain.MatchCandidate
	if txn.IsCredit() {
		candidates = append(candidates, e.proposeInvoiceMatches(txn, corpus.OpenInvoices)...)
		candidates = append(candidates, e.proposeBatchMatch(txn, corpus.OpenInvoices)...)
	} else {
		candidates = append(candidates, e.proposeTransferMatches(txn, corpus.OpenTransfers)...)
	}
	candidates = append(candidates, e.proposeReimbursementPairs(txn, corpus.Reimbursements)...)

	filtered := candidates[:0]
	for _, c := range candidates {
		if c.Confidence.GreaterThanOrEqual(e.cfg.MinConfidence) {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.BetterThan(b) {
			return true
		}
		if b.BetterThan(a) {
			return false
		}
		return a.Ref.DocumentID < b.Ref.DocumentID
	})
	return filtered, nil
}

func (e *Engine) proposeInvoiceMatches(txn domain.Transaction, invoices []domain.Invoice) []domain.MatchCandidate {
	var out []domain.MatchCandidate
	reference := normalizeReference(txn.Reference)
	partnerIBAN := normalizeIBAN(txn.PartnerIBAN())
	partnerName := normalizeName(txn.PartnerName())

	for _, inv := range invoices {
		if inv.Currency != txn.Currency {
			continue
		}
		ref := domain.DocumentRef{Kind: domain.DocumentInvoice, DocumentID: inv.InvoiceID}
		amountEqual := inv.GrossAmount.Equal(txn.Amount.Abs())

		if reference != "" && reference == normalizeReference(inv.InvoiceNumber) {
			out = append(out, domain.MatchCandidate{
				Ref:        ref,
				Method:     domain.MethodReferenceExact,
				Confidence: e.cfg.ReferenceExactConfidence,
			})
			continue
		}

		if amountEqual && partnerIBAN != "" && partnerIBAN == normalizeIBAN(inv.PartnerIBAN) {
			out = append(out, domain.MatchCandidate{
				Ref:        ref,
				Method:     domain.MethodAmountIBAN,
				Confidence: e.cfg.AmountIBANConfidence,
			})
			continue
		}

		if amountEqual && partnerName != "" {
			if sim := nameSimilarity(partnerName, normalizeName(inv.PartnerName)); sim >= e.cfg.FuzzyNameThreshold {
				// Scale by similarity so a closer name ranks higher within the tier.
				confidence := e.cfg.FuzzyNameConfidence.Mul(decimal.NewFromFloat(sim)).Round(2)
				out = append(out, domain.MatchCandidate{
					Ref:        ref,
					Method:     domain.MethodFuzzyName,
					Confidence: confidence,
				})
				continue
			}
		}

		if amountEqual && withinDays(txn.BookingDate, inv.DueDate, e.cfg.DateToleranceDays) {
			out = append(out, domain.MatchCandidate{
				Ref:        ref,
				Method:     domain.MethodAmountDateOnly,
				Confidence: e.cfg.AmountDateOnlyConfidence,
			})
		}
	}
	return out
}

// proposeBatchMatch looks for one partner whose open invoices sum exactly to
// the transaction amount: a single bulk payment covering several bills.
func (e *Engine) proposeBatchMatch(txn domain.Transaction, invoices []domain.Invoice) []domain.MatchCandidate {
	partnerIBAN := normalizeIBAN(txn.PartnerIBAN())
	if partnerIBAN == "" {
		return nil
	}

	byPartner := make(map[string][]domain.Invoice)
	for _, inv := range invoices {
		if inv.Currency != txn.Currency {
			continue
		}
		iban := normalizeIBAN(inv.PartnerIBAN)
		if iban == partnerIBAN {
			byPartner[iban] = append(byPartner[iban], inv)
		}
	}

	group := byPartner[partnerIBAN]
	if len(group) < 2 {
		return nil
	}

	sum := decimal.Zero
	for _, inv := range group {
		sum = sum.Add(inv.GrossAmount)
	}
	if !sum.Equal(txn.Amount.Abs()) {
		return nil
	}

	sort.Slice(group, func(i, j int) bool { return group[i].InvoiceID < group[j].InvoiceID })
	invoiceIDs := make([]string, len(group))
	for i, inv := range group {
		invoiceIDs[i] = inv.InvoiceID
	}
	return []domain.MatchCandidate{{
		InvoiceIDs: invoiceIDs,
		Method:     domain.MethodAmountIBAN,
		Confidence: e.cfg.BatchSumConfidence,
	}}
}

func (e *Engine) proposeTransferMatches(txn domain.Transaction, transfers []domain.OutgoingTransfer) []domain.MatchCandidate {
	var out []domain.MatchCandidate
	reference := normalizeReference(txn.Reference)
	partnerIBAN := normalizeIBAN(txn.PartnerIBAN())

	for _, tr := range transfers {
		if tr.Currency != txn.Currency {
			continue
		}
		ref := domain.DocumentRef{Kind: domain.DocumentTransfer, DocumentID: tr.TransferID}
		amountEqual := tr.Amount.Equal(txn.Amount.Abs())

		if amountEqual && reference != "" && reference == normalizeReference(tr.Reference) {
			out = append(out, domain.MatchCandidate{
				Ref:        ref,
				Method:     domain.MethodTransferExact,
				Confidence: e.cfg.TransferExactConfidence,
			})
			continue
		}

		if amountEqual && partnerIBAN != "" && partnerIBAN == normalizeIBAN(tr.BeneficiaryIBAN) {
			out = append(out, domain.MatchCandidate{
				Ref:        ref,
				Method:     domain.MethodAmountIBAN,
				Confidence: e.cfg.AmountIBANConfidence,
			})
		}
	}
	return out
}

// proposeReimbursementPairs links an inflow to an earlier matching outflow (or
// vice versa): same absolute amount, same counterparty, opposite direction.
func (e *Engine) proposeReimbursementPairs(txn domain.Transaction, others []domain.Transaction) []domain.MatchCandidate {
	var out []domain.MatchCandidate
	partnerIBAN := normalizeIBAN(txn.PartnerIBAN())
	partnerName := normalizeName(txn.PartnerName())

	for _, other := range others {
		if other.TransactionID == txn.TransactionID || other.Currency != txn.Currency {
			continue
		}
		if other.IsCredit() == txn.IsCredit() {
			continue
		}
		if !other.Amount.Abs().Equal(txn.Amount.Abs()) {
			continue
		}

		sameIBAN := partnerIBAN != "" && partnerIBAN == normalizeIBAN(other.PartnerIBAN())
		sameName := partnerName != "" && partnerName == normalizeName(other.PartnerName())
		if !sameIBAN && !sameName {
			continue
		}

		out = append(out, domain.MatchCandidate{
			Ref:        domain.DocumentRef{Kind: domain.DocumentReimbursement, DocumentID: other.TransactionID},
			Method:     domain.MethodReimbursementPair,
			Confidence: e.cfg.ReimbursementPairConfidence,
		})
	}
	return out
}

func withinDays(a, b time.Time, days int) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

func normalizeReference(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func normalizeIBAN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// nameSimilarity is a Levenshtein ratio over normalized names.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(dist)/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
