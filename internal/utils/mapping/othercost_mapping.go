package mapping

import (
	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/models"
)

// ToModelOtherCost converts a domain OtherCost to a model OtherCost
func ToModelOtherCost(d domain.OtherCost) models.OtherCost {
	return models.OtherCost{
		OtherCostID:   d.OtherCostID,
		TransactionID: d.TransactionID,
		Category:      string(d.Category),
		Amount:        d.Amount,
		Currency:      d.Currency,
		Date:          d.Date,
		Description:   d.Description,
		Notes:         d.Notes,
		Tags:          d.Tags,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOtherCost converts a model OtherCost to a domain OtherCost
func ToDomainOtherCost(m models.OtherCost) domain.OtherCost {
	return domain.OtherCost{
		OtherCostID:   m.OtherCostID,
		TransactionID: m.TransactionID,
		Category:      domain.OtherCostCategory(m.Category),
		Amount:        m.Amount,
		Currency:      m.Currency,
		Date:          m.Date,
		Description:   m.Description,
		Notes:         m.Notes,
		Tags:          m.Tags,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOtherCostSlice converts a slice of model OtherCosts to domain OtherCosts
func ToDomainOtherCostSlice(ms []models.OtherCost) []domain.OtherCost {
	ds := make([]domain.OtherCost, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOtherCost(m)
	}
	return ds
}

// ToModelCategoryPattern converts a domain CategoryPattern to a model CategoryPattern
func ToModelCategoryPattern(d domain.CategoryPattern) models.CategoryPattern {
	return models.CategoryPattern{
		PatternID:    d.PatternID,
		Counterparty: d.Counterparty,
		Category:     string(d.Category),
		UseCount:     d.UseCount,
		LastUsedAt:   d.LastUsedAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategoryPattern converts a model CategoryPattern to a domain CategoryPattern
func ToDomainCategoryPattern(m models.CategoryPattern) domain.CategoryPattern {
	return domain.CategoryPattern{
		PatternID:    m.PatternID,
		Counterparty: m.Counterparty,
		Category:     domain.OtherCostCategory(m.Category),
		UseCount:     m.UseCount,
		LastUsedAt:   m.LastUsedAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
