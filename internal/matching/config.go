// Package matching provides the default matching strategy: a tiered scorer
// that proposes document candidates for a bank transaction. The engine
// consumes it through the MatchProposer port, so the scoring internals stay
// swappable.
package matching

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config holds the tolerances and per-tier base confidences of the scorer.
// Tier confidences must strictly decrease with specificity so that the
// engine's tie-break ordering stays meaningful.
type Config struct {
	// DateToleranceDays is the window for amount/date-only and reimbursement
	// pair candidates.
	DateToleranceDays int

	// FuzzyNameThreshold is the minimum name similarity (0..1) for a fuzzy
	// name candidate.
	FuzzyNameThreshold float64

	// MinConfidence drops candidates scoring below it.
	MinConfidence decimal.Decimal

	// Base confidences per method tier.
	ReferenceExactConfidence    decimal.Decimal
	AmountIBANConfidence        decimal.Decimal
	BatchSumConfidence          decimal.Decimal
	TransferExactConfidence     decimal.Decimal
	ReimbursementPairConfidence decimal.Decimal
	FuzzyNameConfidence         decimal.Decimal
	AmountDateOnlyConfidence    decimal.Decimal
}

// DefaultConfig returns the tolerances used in production.
func DefaultConfig() Config {
	return Config{
		DateToleranceDays:           3,
		FuzzyNameThreshold:          0.82,
		MinConfidence:               decimal.RequireFromString("0.50"),
		ReferenceExactConfidence:    decimal.RequireFromString("0.95"),
		AmountIBANConfidence:        decimal.RequireFromString("0.85"),
		BatchSumConfidence:          decimal.RequireFromString("0.82"),
		TransferExactConfidence:     decimal.RequireFromString("0.80"),
		ReimbursementPairConfidence: decimal.RequireFromString("0.70"),
		FuzzyNameConfidence:         decimal.RequireFromString("0.60"),
		AmountDateOnlyConfidence:    decimal.RequireFromString("0.50"),
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", c.DateToleranceDays)
	}
	if c.FuzzyNameThreshold < 0 || c.FuzzyNameThreshold > 1 {
		return fmt.Errorf("fuzzy name threshold must be between 0 and 1: %f", c.FuzzyNameThreshold)
	}

	// Tier confidences must strictly decrease with specificity.
	ordered := []decimal.Decimal{
		c.ReferenceExactConfidence,
		c.AmountIBANConfidence,
		c.TransferExactConfidence,
		c.ReimbursementPairConfidence,
		c.FuzzyNameConfidence,
		c.AmountDateOnlyConfidence,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].GreaterThanOrEqual(ordered[i-1]) {
			return fmt.Errorf("tier confidences must strictly decrease, got %s >= %s at position %d",
				ordered[i].String(), ordered[i-1].String(), i)
		}
	}
	return nil
}
