// Package projection implements the read-side filter/sort transform the
// presentation layer applies over a transaction list. It is pure and
// deterministic: input slices are never mutated, filters apply in a fixed
// order, and sorting is stable so equal keys keep their prior relative order.
package projection

import (
	"sort"
	"strings"

	"github.com/finadm/bank_recon_app/internal/core/domain"
)

// Filter holds the three filter criteria, applied in order: type, then
// match status, then free text. An empty criterion is a no-op.
type Filter struct {
	// TypeCategory is the coarse UI category: TRANSFER, POS, FEE, INTEREST,
	// CORRECTION or OTHER. An unrecognized value excludes all rows.
	TypeCategory string

	// MatchStatus is "matched" or "unmatched". This filter only inspects the
	// three single-document links; batch matches and other-cost resolutions
	// are not considered.
	MatchStatus string

	// Query is matched case-insensitively against the direction-resolved
	// partner name or the raw description.
	Query string
}

// SortField selects the sort column.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
	SortByType   SortField = "type"
)

// Sort holds the sort criterion. An empty Field preserves input order.
type Sort struct {
	Field SortField
	Desc  bool
}

// Apply filters and sorts the given transactions, returning a new slice.
func Apply(transactions []domain.Transaction, filter Filter, sortBy Sort) []domain.Transaction {
	result := filterTransactions(transactions, filter)
	sortTransactions(result, sortBy)
	return result
}

func filterTransactions(transactions []domain.Transaction, filter Filter) []domain.Transaction {
	result := make([]domain.Transaction, 0, len(transactions))
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	for _, t := range transactions {
		if !matchesTypeCategory(t.Type, filter.TypeCategory) {
			continue
		}
		if !matchesStatus(t, filter.MatchStatus) {
			continue
		}
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// matchesTypeCategory maps the coarse UI category to underlying bank types.
// Unknown categories fail closed.
func matchesTypeCategory(txnType domain.TransactionType, category string) bool {
	if category == "" {
		return true
	}
	typ := string(txnType)
	switch category {
	case "TRANSFER":
		return strings.Contains(typ, "TRANSFER") || strings.Contains(typ, "AFR")
	case "POS":
		return strings.Contains(typ, "POS") || strings.Contains(typ, "ATM")
	case "FEE":
		return strings.Contains(typ, "FEE") || typ == "BANK_FEE"
	case "INTEREST":
		return strings.Contains(typ, "INTEREST")
	case "CORRECTION":
		return typ == "CORRECTION"
	case "OTHER":
		return typ == "OTHER"
	default:
		return false
	}
}

// matchesStatus checks only the three single-document links, reproducing the
// observed UI behavior: batch-matched and categorized rows count as unmatched
// here.
func matchesStatus(t domain.Transaction, status string) bool {
	singleMatched := t.MatchedInvoiceID != nil ||
		t.MatchedTransferID != nil ||
		t.MatchedReimbursementID != nil

	switch status {
	case "matched":
		return singleMatched
	case "unmatched":
		return !singleMatched
	default:
		return true
	}
}

func matchesQuery(t domain.Transaction, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(t.PartnerName()), loweredQuery) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description), loweredQuery)
}

func sortTransactions(transactions []domain.Transaction, sortBy Sort) {
	var less func(a, b domain.Transaction) bool
	switch sortBy.Field {
	case SortByDate:
		less = func(a, b domain.Transaction) bool { return a.BookingDate.Before(b.BookingDate) }
	case SortByAmount:
		less = func(a, b domain.Transaction) bool { return a.Amount.LessThan(b.Amount) }
	case SortByType:
		less = func(a, b domain.Transaction) bool { return a.Type < b.Type }
	default:
		return
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if sortBy.Desc {
			return less(transactions[j], transactions[i])
		}
		return less(transactions[i], transactions[j])
	})
}
