package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/core/services"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconHandler handles HTTP requests for the reconciliation operations.
type reconHandler struct {
	reconService     portssvc.ReconSvcFacade
	otherCostService portssvc.OtherCostSvcFacade
}

// newReconHandler creates a new reconHandler.
func newReconHandler(reconService portssvc.ReconSvcFacade, otherCostService portssvc.OtherCostSvcFacade) *reconHandler {
	return &reconHandler{
		reconService:     reconService,
		otherCostService: otherCostService,
	}
}

// RegisterTransactionRoutes registers routes related to transaction reconciliation.
func RegisterTransactionRoutes(rg *gin.RouterGroup, reconService portssvc.ReconSvcFacade, otherCostService portssvc.OtherCostSvcFacade) {
	h := newReconHandler(reconService, otherCostService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/:transactionID/match", h.matchTransaction)
		transactions.POST("/:transactionID/batch-match", h.batchMatchTransaction)
		transactions.POST("/:transactionID/approve", h.approveMatch)
		transactions.POST("/:transactionID/unmatch", h.unmatchTransaction)
		transactions.POST("/:transactionID/rematch", h.rematchTransaction)
		transactions.POST("/:transactionID/categorize", h.categorizeTransaction)
		transactions.GET("/:transactionID/category-suggestion", h.suggestCategory)
	}

	otherCosts := rg.Group("/other-costs")
	{
		otherCosts.POST("", h.createStandaloneOtherCost)
	}
}

// reconStatusFromError maps reconciliation service errors to HTTP statuses.
func reconStatusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyMatched),
		errors.Is(err, services.ErrAlreadyApproved),
		errors.Is(err, services.ErrNotMatched),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrStrategyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondReconError writes the mapped status. Internal failures keep their
// detail in the log, not the response.
func respondReconError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := reconStatusFromError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	logger.Warn("Rejected request to "+action, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// operatorIDOrNil extracts the optional operator identity from the context.
func operatorIDOrNil(c *gin.Context) *string {
	if operatorID, ok := middleware.GetOperatorIDFromContext(c); ok {
		return &operatorID
	}
	return nil
}

// matchTransaction godoc
// @Summary Match a transaction to a single document
// @Description Records a single-document match; rejects if a different match already exists
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   match body dto.MatchRequest true "Match details"
// @Success 200 {object} dto.TransactionResponse "Matched transaction"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Transaction or document not found"
// @Failure 409 {object} map[string]string "Already matched to a different document"
// @Router /transactions/{transactionID}/match [post]
func (h *reconHandler) matchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	txn, err := h.reconService.Match(c.Request.Context(), transactionID, req, operatorIDOrNil(c))
	if err != nil {
		respondReconError(c, logger, err, "match transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// batchMatchTransaction godoc
// @Summary Match a transaction to several invoices
// @Description Records a multi-invoice match for one bulk payment
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   match body dto.BatchMatchRequest true "Batch match details"
// @Success 200 {object} dto.TransactionResponse "Matched transaction"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Transaction or invoice not found"
// @Failure 409 {object} map[string]string "Already matched to a different document"
// @Router /transactions/{transactionID}/batch-match [post]
func (h *reconHandler) batchMatchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.BatchMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	txn, err := h.reconService.BatchMatch(c.Request.Context(), transactionID, req, operatorIDOrNil(c))
	if err != nil {
		respondReconError(c, logger, err, "batch-match transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// approveMatch godoc
// @Summary Approve an automatic match
// @Description Raises a sub-1.00 match to operator-asserted certainty
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.ApproveMatchResponse "Confidence change"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Not matched, or already approved"
// @Router /transactions/{transactionID}/approve [post]
func (h *reconHandler) approveMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	approverID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + middleware.OperatorHeader + " header"})
		return
	}

	resp, err := h.reconService.ApproveMatch(c.Request.Context(), transactionID, approverID)
	if err != nil {
		respondReconError(c, logger, err, "approve match")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// unmatchTransaction godoc
// @Summary Clear a transaction's match
// @Description Clears the current match; retrying on an unmatched transaction succeeds with a zero count
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.UnmatchResponse "Detached document count"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{transactionID}/unmatch [post]
func (h *reconHandler) unmatchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	resp, err := h.reconService.Unmatch(c.Request.Context(), transactionID, operatorIDOrNil(c))
	if err != nil {
		respondReconError(c, logger, err, "unmatch transaction")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// rematchTransaction godoc
// @Summary Re-run the matching strategy for a transaction
// @Description Clears any current match and reapplies the strategy; no candidate is a normal outcome
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.RematchResponse "Rematch outcome"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 503 {object} map[string]string "Matching strategy unavailable"
// @Router /transactions/{transactionID}/rematch [post]
func (h *reconHandler) rematchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	resp, err := h.reconService.Rematch(c.Request.Context(), transactionID, operatorIDOrNil(c))
	if err != nil {
		respondReconError(c, logger, err, "rematch transaction")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// categorizeTransaction godoc
// @Summary Categorize a transaction as an other cost
// @Description Records an other-cost categorization without touching match state
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   categorization body dto.CategorizeRequest true "Categorization details"
// @Success 200 {object} dto.OtherCostResponse "Created other cost"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already categorized"
// @Router /transactions/{transactionID}/categorize [post]
func (h *reconHandler) categorizeTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + middleware.OperatorHeader + " header"})
		return
	}

	cost, err := h.otherCostService.Categorize(c.Request.Context(), transactionID, req, operatorID)
	if err != nil {
		respondReconError(c, logger, err, "categorize transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToOtherCostResponse(*cost))
}

// createStandaloneOtherCost godoc
// @Summary Record a standalone other cost
// @Description Records a cost with no backing statement transaction
// @Tags other-costs
// @Accept  json
// @Produce  json
// @Param   cost body dto.StandaloneOtherCostRequest true "Cost details"
// @Success 200 {object} dto.OtherCostResponse "Created other cost"
// @Failure 400 {object} map[string]string "Invalid request or missing operator"
// @Router /other-costs [post]
func (h *reconHandler) createStandaloneOtherCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.StandaloneOtherCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + middleware.OperatorHeader + " header"})
		return
	}

	cost, err := h.otherCostService.CreateStandalone(c.Request.Context(), req, operatorID)
	if err != nil {
		respondReconError(c, logger, err, "record other cost")
		return
	}

	c.JSON(http.StatusOK, dto.ToOtherCostResponse(*cost))
}

// suggestCategory godoc
// @Summary Suggest a category for a transaction
// @Description Returns the learned pattern for the transaction's counterparty
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.CategorySuggestionResponse "Suggestion"
// @Failure 404 {object} map[string]string "No learned pattern for this counterparty"
// @Router /transactions/{transactionID}/category-suggestion [get]
func (h *reconHandler) suggestCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	pattern, err := h.otherCostService.SuggestCategory(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No learned pattern for this counterparty"})
			return
		}
		respondReconError(c, logger, err, "suggest category")
		return
	}

	c.JSON(http.StatusOK, dto.CategorySuggestionResponse{
		Counterparty: pattern.Counterparty,
		Category:     pattern.Category,
		UseCount:     pattern.UseCount,
	})
}
