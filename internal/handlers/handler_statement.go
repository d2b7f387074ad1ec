package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statementHandler handles HTTP requests related to statements.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
	reconService     portssvc.ReconSvcFacade
}

// newStatementHandler creates a new statementHandler.
func newStatementHandler(statementService portssvc.StatementSvcFacade, reconService portssvc.ReconSvcFacade) *statementHandler {
	return &statementHandler{
		statementService: statementService,
		reconService:     reconService,
	}
}

// RegisterStatementRoutes registers routes related to statements.
func RegisterStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade, reconService portssvc.ReconSvcFacade) {
	h := newStatementHandler(statementService, reconService)

	statements := rg.Group("/statements")
	{
		statements.POST("", h.uploadStatements)
		statements.GET("", h.listStatements)
		statements.GET("/:statementID", h.getStatement)
		statements.GET("/:statementID/summary", h.getStatementSummary)
		statements.GET("/:statementID/transactions", h.listStatementTransactions)
	}
}

// uploadStatements godoc
// @Summary Upload one or more bank statement files
// @Description Accepts multipart files and processes them strictly in order; a failed file never aborts its siblings
// @Tags statements
// @Accept  multipart/form-data
// @Produce  json
// @Param   files formData file true "Statement files"
// @Success 200 {object} dto.BatchUploadResult "Per-file outcomes"
// @Failure 400 {object} map[string]string "No files submitted"
// @Failure 500 {object} map[string]string "Failed to process upload"
// @Router /statements [post]
func (h *statementHandler) uploadStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	form, err := c.MultipartForm()
	if err != nil {
		logger.Warn("Failed to read multipart form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files submitted"})
		return
	}

	files := make([]dto.FileUpload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", slog.String("file_name", fh.Filename), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file " + fh.Filename})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			logger.Error("Failed to read uploaded file", slog.String("file_name", fh.Filename), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file " + fh.Filename})
			return
		}
		files = append(files, dto.FileUpload{FileName: fh.Filename, Content: content})
	}

	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + middleware.OperatorHeader + " header"})
		return
	}

	result, err := h.statementService.UploadStatementBatch(c.Request.Context(), files, operatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to process statement upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process upload"})
		return
	}

	logger.Info("Statement upload processed", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	c.JSON(http.StatusOK, result)
}

// listStatements godoc
// @Summary List uploaded statements
// @Description Retrieves statements newest first with token-based pagination
// @Tags statements
// @Produce  json
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListStatementsResponse "Statements page"
// @Failure 500 {object} map[string]string "Failed to list statements"
// @Router /statements [get]
func (h *statementHandler) listStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListStatementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.statementService.ListStatements(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list statements", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list statements"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getStatement godoc
// @Summary Get one statement
// @Description Retrieves one statement by its ID
// @Tags statements
// @Produce  json
// @Param   statementID path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse "Statement"
// @Failure 404 {object} map[string]string "Statement not found"
// @Failure 500 {object} map[string]string "Failed to retrieve statement"
// @Router /statements/{statementID} [get]
func (h *statementHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	statementID := c.Param("statementID")

	statement, err := h.statementService.GetStatementByID(c.Request.Context(), statementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement not found"})
			return
		}
		logger.Error("Failed to get statement", slog.String("error", err.Error()), slog.String("statement_id", statementID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statement"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStatementResponse(*statement))
}

// getStatementSummary godoc
// @Summary Get a statement's resolution summary
// @Description Reports the three resolution channels of the statement's transactions
// @Tags statements
// @Produce  json
// @Param   statementID path string true "Statement ID"
// @Success 200 {object} dto.StatementSummary "Resolution summary"
// @Failure 404 {object} map[string]string "Statement not found"
// @Failure 500 {object} map[string]string "Failed to compute summary"
// @Router /statements/{statementID}/summary [get]
func (h *statementHandler) getStatementSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	statementID := c.Param("statementID")

	summary, err := h.statementService.GetStatementSummary(c.Request.Context(), statementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement not found"})
			return
		}
		logger.Error("Failed to compute statement summary", slog.String("error", err.Error()), slog.String("statement_id", statementID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// listStatementTransactions godoc
// @Summary List a statement's transactions
// @Description Retrieves the statement's transactions through the filter and sort projection
// @Tags statements
// @Produce  json
// @Param   statementID path string true "Statement ID"
// @Param   type query string false "Type category: TRANSFER | POS | FEE | INTEREST | CORRECTION | OTHER"
// @Param   match query string false "Match status: matched | unmatched"
// @Param   q query string false "Free text against partner name or description"
// @Param   sortBy query string false "Sort field: date | amount | type"
// @Param   desc query bool false "Sort descending"
// @Success 200 {array} dto.TransactionResponse "Projected transactions"
// @Failure 404 {object} map[string]string "Statement not found"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /statements/{statementID}/transactions [get]
func (h *statementHandler) listStatementTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	statementID := c.Param("statementID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	transactions, err := h.reconService.ListTransactions(c.Request.Context(), statementID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Statement not found"})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("statement_id", statementID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}
