package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OtherCostCategory is the closed set of non-reconcilable expense categories.
type OtherCostCategory string

const (
	CategorySubscription OtherCostCategory = "SUBSCRIPTION"
	CategoryTravel       OtherCostCategory = "TRAVEL"
	CategoryFuel         OtherCostCategory = "FUEL"
	CategoryOffice       OtherCostCategory = "OFFICE"
	CategoryUtility      OtherCostCategory = "UTILITY"
	CategoryCardPurchase OtherCostCategory = "CARD_PURCHASE"
	CategoryBankFee      OtherCostCategory = "BANK_FEE"
	CategoryInterest     OtherCostCategory = "INTEREST"
	CategoryOtherMisc    OtherCostCategory = "OTHER"
)

// IsValid reports whether the category is part of the closed enum.
func (c OtherCostCategory) IsValid() bool {
	switch c {
	case CategorySubscription, CategoryTravel, CategoryFuel, CategoryOffice,
		CategoryUtility, CategoryCardPurchase, CategoryBankFee, CategoryInterest,
		CategoryOtherMisc:
		return true
	}
	return false
}

// OtherCost is an operator-entered expense categorization. It annotates a
// transaction without touching its match state; it is a separate resolution
// channel from document matching.
type OtherCost struct {
	OtherCostID   string            `json:"otherCostID"`
	TransactionID *string           `json:"transactionID,omitempty"` // nil when entered independently
	Category      OtherCostCategory `json:"category"`
	Amount        decimal.Decimal   `json:"amount"` // absolute value, always positive
	Currency      string            `json:"currency"`
	Date          time.Time         `json:"date"`
	Description   string            `json:"description"`
	Notes         string            `json:"notes"`
	Tags          []string          `json:"tags,omitempty"`
	AuditFields
}

// CategoryPattern is a learned auto-categorization rule seeded whenever an
// operator categorizes a transaction: the next statement line from the same
// counterparty can be suggested or resolved automatically.
type CategoryPattern struct {
	PatternID    string            `json:"patternID"`
	Counterparty string            `json:"counterparty"` // normalized partner name
	Category     OtherCostCategory `json:"category"`
	UseCount     int               `json:"useCount"`
	LastUsedAt   time.Time         `json:"lastUsedAt"`
	AuditFields
}

// NormalizeCounterparty folds a partner name into the canonical form used as
// the CategoryPattern lookup key: uppercase with runs of whitespace collapsed
// to a single space.
func NormalizeCounterparty(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}
