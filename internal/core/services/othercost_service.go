package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/middleware"
)

// systemActor is the audit identity used for automatic mutations.
const systemActor = "system"

// otherCostService implements the categorization sidecar. It annotates
// transactions as non-reconcilable costs and maintains the learned
// counterparty patterns; it never reads or writes match state.
type otherCostService struct {
	txnRepo       portsrepo.TransactionRepositoryWithTx
	otherCostRepo portsrepo.OtherCostRepositoryFacade
}

// NewOtherCostService creates a new other-cost service.
func NewOtherCostService(txnRepo portsrepo.TransactionRepositoryWithTx, otherCostRepo portsrepo.OtherCostRepositoryFacade) portssvc.OtherCostSvcFacade {
	return &otherCostService{
		txnRepo:       txnRepo,
		otherCostRepo: otherCostRepo,
	}
}

// Ensure otherCostService implements the portssvc.OtherCostSvcFacade interface
var _ portssvc.OtherCostSvcFacade = (*otherCostService)(nil)

// Categorize records an other-cost for a transaction and seeds the learned
// pattern for its counterparty. Works identically on matched and unmatched
// transactions.
// Implements portssvc.OtherCostSvcFacade
func (s *otherCostService) Categorize(ctx context.Context, transactionID string, req dto.CategorizeRequest, operatorID string) (*domain.OtherCost, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, req.Category)
	}

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	existing, err := s.otherCostRepo.FindOtherCostByTransactionID(ctx, transactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed duplicate check: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: transaction %s is already categorized", apperrors.ErrDuplicate, transactionID)
	}

	description := req.Description
	if description == "" {
		description = txn.Description
	}

	now := time.Now().UTC()
	cost := domain.OtherCost{
		OtherCostID:   uuid.NewString(),
		TransactionID: &transactionID,
		Category:      req.Category,
		Amount:        txn.Amount.Abs(),
		Currency:      txn.Currency,
		Date:          txn.BookingDate,
		Description:   description,
		Notes:         req.Notes,
		Tags:          req.Tags,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     operatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: operatorID,
		},
	}

	if err := s.otherCostRepo.SaveOtherCost(ctx, cost); err != nil {
		return nil, fmt.Errorf("failed to save other cost: %w", err)
	}

	s.learnPattern(ctx, txn, req.Category, operatorID)

	logger.Info("Transaction categorized",
		slog.String("transaction_id", transactionID),
		slog.String("category", string(req.Category)),
	)
	return &cost, nil
}

// CreateStandalone records an other-cost with no backing statement
// transaction. No pattern is learned; there is no counterparty to key it by.
// Implements portssvc.OtherCostSvcFacade
func (s *otherCostService) CreateStandalone(ctx context.Context, req dto.StandaloneOtherCostRequest, operatorID string) (*domain.OtherCost, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, req.Category)
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be non-zero", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	cost := domain.OtherCost{
		OtherCostID: uuid.NewString(),
		Category:    req.Category,
		Amount:      req.Amount.Abs(),
		Currency:    req.Currency,
		Date:        req.Date,
		Description: req.Description,
		Notes:       req.Notes,
		Tags:        req.Tags,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     operatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: operatorID,
		},
	}

	if err := s.otherCostRepo.SaveOtherCost(ctx, cost); err != nil {
		return nil, fmt.Errorf("failed to save other cost: %w", err)
	}

	logger.Info("Standalone other cost recorded",
		slog.String("other_cost_id", cost.OtherCostID),
		slog.String("category", string(req.Category)),
	)
	return &cost, nil
}

// SuggestCategory returns the learned pattern for the transaction's
// counterparty, or ErrNotFound when nothing has been learned yet.
// Implements portssvc.OtherCostSvcFacade
func (s *otherCostService) SuggestCategory(ctx context.Context, transactionID string) (*domain.CategoryPattern, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	counterparty := domain.NormalizeCounterparty(txn.PartnerName())
	if counterparty == "" {
		return nil, apperrors.NewNotFoundError("transaction has no counterparty to suggest from")
	}

	return s.otherCostRepo.FindPatternByCounterparty(ctx, counterparty)
}

// learnPattern records or reinforces the counterparty pattern behind an
// operator categorization. Pattern maintenance is best effort; a failure never
// fails the categorization itself.
func (s *otherCostService) learnPattern(ctx context.Context, txn *domain.Transaction, category domain.OtherCostCategory, operatorID string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	counterparty := domain.NormalizeCounterparty(txn.PartnerName())
	if counterparty == "" {
		return
	}

	now := time.Now().UTC()
	pattern := domain.CategoryPattern{
		PatternID:    uuid.NewString(),
		Counterparty: counterparty,
		Category:     category,
		UseCount:     1,
		LastUsedAt:   now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     operatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: operatorID,
		},
	}
	if err := s.otherCostRepo.UpsertPattern(ctx, pattern); err != nil {
		logger.Warn("Failed to learn category pattern",
			slog.String("counterparty", counterparty),
			slog.String("error", err.Error()),
		)
	}
}
