package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/core/services"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/handlers"
	"github.com/finadm/bank_recon_app/internal/middleware"
)

// --- Mock ReconService ---
type MockReconService struct {
	mock.Mock
}

func (m *MockReconService) Match(ctx context.Context, transactionID string, req dto.MatchRequest, operatorID *string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockReconService) BatchMatch(ctx context.Context, transactionID string, req dto.BatchMatchRequest, operatorID *string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockReconService) ApproveMatch(ctx context.Context, transactionID string, approverID string) (*dto.ApproveMatchResponse, error) {
	args := m.Called(ctx, transactionID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ApproveMatchResponse), args.Error(1)
}
func (m *MockReconService) Unmatch(ctx context.Context, transactionID string, operatorID *string) (*dto.UnmatchResponse, error) {
	args := m.Called(ctx, transactionID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UnmatchResponse), args.Error(1)
}
func (m *MockReconService) Rematch(ctx context.Context, transactionID string, operatorID *string) (*dto.RematchResponse, error) {
	args := m.Called(ctx, transactionID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RematchResponse), args.Error(1)
}
func (m *MockReconService) ListTransactions(ctx context.Context, statementID string, params dto.ListTransactionsParams) ([]dto.TransactionResponse, error) {
	args := m.Called(ctx, statementID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.TransactionResponse), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ReconSvcFacade = (*MockReconService)(nil)

// --- Mock OtherCostService ---
type MockOtherCostService struct {
	mock.Mock
}

func (m *MockOtherCostService) Categorize(ctx context.Context, transactionID string, req dto.CategorizeRequest, operatorID string) (*domain.OtherCost, error) {
	args := m.Called(ctx, transactionID, req, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OtherCost), args.Error(1)
}
func (m *MockOtherCostService) CreateStandalone(ctx context.Context, req dto.StandaloneOtherCostRequest, operatorID string) (*domain.OtherCost, error) {
	args := m.Called(ctx, req, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OtherCost), args.Error(1)
}
func (m *MockOtherCostService) SuggestCategory(ctx context.Context, transactionID string) (*domain.CategoryPattern, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryPattern), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.OtherCostSvcFacade = (*MockOtherCostService)(nil)

// --- Test Suite ---
type ReconHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockReconService     *MockReconService
	mockOtherCostService *MockOtherCostService
}

func (suite *ReconHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockReconService = new(MockReconService)
	suite.mockOtherCostService = new(MockOtherCostService)

	v1 := suite.router.Group("/api/v1", middleware.OperatorMiddleware())
	handlers.RegisterTransactionRoutes(v1, suite.mockReconService, suite.mockOtherCostService)
}

func (suite *ReconHandlerTestSuite) postJSON(url string, body any, operatorID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if operatorID != "" {
		req.Header.Set(middleware.OperatorHeader, operatorID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ReconHandlerTestSuite) TestMatchTransaction_Success() {
	transactionID := uuid.NewString()
	operatorID := uuid.NewString()
	invoiceID := uuid.NewString()

	body := dto.MatchRequest{
		DocumentKind: domain.DocumentInvoice,
		DocumentID:   invoiceID,
		Method:       domain.MethodReferenceExact,
		Confidence:   decimal.NewFromFloat(0.95),
	}

	matched := &domain.Transaction{
		TransactionID:    transactionID,
		StatementID:      uuid.NewString(),
		Amount:           decimal.NewFromInt(-50000),
		Currency:         "HUF",
		MatchedInvoiceID: &invoiceID,
		MatchMethod:      domain.MethodReferenceExact,
		MatchConfidence:  decimal.NewFromFloat(0.95),
	}

	suite.mockReconService.On("Match",
		mock.Anything,
		transactionID,
		mock.MatchedBy(func(req dto.MatchRequest) bool {
			return req.DocumentID == invoiceID && req.Method == domain.MethodReferenceExact
		}),
		mock.MatchedBy(func(op *string) bool { return op != nil && *op == operatorID }),
	).Return(matched, nil).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/match", transactionID), body, operatorID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(transactionID, resp.TransactionID)
	suite.True(resp.Matched)

	suite.mockReconService.AssertExpectations(suite.T())
}

func (suite *ReconHandlerTestSuite) TestMatchTransaction_AlreadyMatchedConflict() {
	transactionID := uuid.NewString()

	body := dto.MatchRequest{
		DocumentKind: domain.DocumentInvoice,
		DocumentID:   uuid.NewString(),
		Method:       domain.MethodAmountIBAN,
		Confidence:   decimal.NewFromFloat(0.8),
	}

	suite.mockReconService.On("Match", mock.Anything, transactionID, mock.AnythingOfType("dto.MatchRequest"), mock.Anything).
		Return(nil, fmt.Errorf("%w: transaction %s", services.ErrAlreadyMatched, transactionID)).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/match", transactionID), body, "")

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReconHandlerTestSuite) TestMatchTransaction_InvalidBody() {
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/transactions/%s/match", uuid.NewString()), bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReconService.AssertNotCalled(suite.T(), "Match", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconHandlerTestSuite) TestApproveMatch_MissingOperatorHeader() {
	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/approve", uuid.NewString()), nil, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReconService.AssertNotCalled(suite.T(), "ApproveMatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconHandlerTestSuite) TestApproveMatch_Success() {
	transactionID := uuid.NewString()
	approverID := uuid.NewString()

	resp := &dto.ApproveMatchResponse{
		PreviousConfidence: decimal.NewFromFloat(0.85),
		NewConfidence:      decimal.NewFromInt(1),
	}

	suite.mockReconService.On("ApproveMatch", mock.Anything, transactionID, approverID).Return(resp, nil).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/approve", transactionID), nil, approverID)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ApproveMatchResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.True(body.NewConfidence.Equal(decimal.NewFromInt(1)))

	suite.mockReconService.AssertExpectations(suite.T())
}

func (suite *ReconHandlerTestSuite) TestUnmatchTransaction_Success() {
	transactionID := uuid.NewString()

	suite.mockReconService.On("Unmatch", mock.Anything, transactionID, mock.Anything).
		Return(&dto.UnmatchResponse{DocumentsDetached: 3}, nil).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/unmatch", transactionID), nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var body dto.UnmatchResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(3, body.DocumentsDetached)
}

func (suite *ReconHandlerTestSuite) TestRematchTransaction_StrategyUnavailable() {
	transactionID := uuid.NewString()

	suite.mockReconService.On("Rematch", mock.Anything, transactionID, mock.Anything).
		Return(nil, services.ErrStrategyUnavailable).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/rematch", transactionID), nil, "")

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *ReconHandlerTestSuite) TestRematchTransaction_NotFound() {
	transactionID := uuid.NewString()

	suite.mockReconService.On("Rematch", mock.Anything, transactionID, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/rematch", transactionID), nil, "")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReconHandlerTestSuite) TestCategorizeTransaction_Success() {
	transactionID := uuid.NewString()
	operatorID := uuid.NewString()

	body := dto.CategorizeRequest{Category: domain.CategoryFuel}
	cost := &domain.OtherCost{
		OtherCostID:   uuid.NewString(),
		TransactionID: &transactionID,
		Category:      domain.CategoryFuel,
		Amount:        decimal.NewFromInt(25000),
		Currency:      "HUF",
	}

	suite.mockOtherCostService.On("Categorize", mock.Anything, transactionID, mock.AnythingOfType("dto.CategorizeRequest"), operatorID).
		Return(cost, nil).Once()

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/categorize", transactionID), body, operatorID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.OtherCostResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.CategoryFuel, resp.Category)

	suite.mockOtherCostService.AssertExpectations(suite.T())
}

func (suite *ReconHandlerTestSuite) TestCategorizeTransaction_MissingOperatorHeader() {
	body := dto.CategorizeRequest{Category: domain.CategoryFuel}

	w := suite.postJSON(fmt.Sprintf("/api/v1/transactions/%s/categorize", uuid.NewString()), body, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockOtherCostService.AssertNotCalled(suite.T(), "Categorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconHandlerTestSuite) TestSuggestCategory_NotFound() {
	transactionID := uuid.NewString()

	suite.mockOtherCostService.On("SuggestCategory", mock.Anything, transactionID).
		Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/transactions/%s/category-suggestion", transactionID), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReconHandlerTestSuite) TestSuggestCategory_Success() {
	transactionID := uuid.NewString()
	pattern := &domain.CategoryPattern{
		PatternID:    uuid.NewString(),
		Counterparty: "MOL NYRT",
		Category:     domain.CategoryFuel,
		UseCount:     7,
	}

	suite.mockOtherCostService.On("SuggestCategory", mock.Anything, transactionID).Return(pattern, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/transactions/%s/category-suggestion", transactionID), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CategorySuggestionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("MOL NYRT", resp.Counterparty)
	suite.Equal(7, resp.UseCount)
}

// --- Run Test Suite ---
func (suite *ReconHandlerTestSuite) TestCreateStandaloneOtherCost_Success() {
	operatorID := uuid.NewString()

	body := dto.StandaloneOtherCostRequest{
		Category:    domain.CategoryTravel,
		Amount:      decimal.NewFromInt(45000),
		Currency:    "HUF",
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Description: "taxi to client site",
	}

	created := &domain.OtherCost{
		OtherCostID: uuid.NewString(),
		Category:    domain.CategoryTravel,
		Amount:      decimal.NewFromInt(45000),
		Currency:    "HUF",
		Date:        body.Date,
		Description: body.Description,
	}

	suite.mockOtherCostService.On("CreateStandalone",
		mock.Anything,
		mock.MatchedBy(func(req dto.StandaloneOtherCostRequest) bool {
			return req.Category == domain.CategoryTravel && req.Amount.Equal(decimal.NewFromInt(45000))
		}),
		operatorID,
	).Return(created, nil).Once()

	w := suite.postJSON("/api/v1/other-costs", body, operatorID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.OtherCostResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.OtherCostID, resp.OtherCostID)
	suite.Nil(resp.TransactionID)

	suite.mockOtherCostService.AssertExpectations(suite.T())
}

func (suite *ReconHandlerTestSuite) TestCreateStandaloneOtherCost_MissingOperatorHeader() {
	body := dto.StandaloneOtherCostRequest{
		Category:    domain.CategoryTravel,
		Amount:      decimal.NewFromInt(45000),
		Currency:    "HUF",
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Description: "taxi to client site",
	}

	w := suite.postJSON("/api/v1/other-costs", body, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockOtherCostService.AssertNotCalled(suite.T(), "CreateStandalone", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconHandler(t *testing.T) {
	suite.Run(t, new(ReconHandlerTestSuite))
}
