package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
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
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/handlers"
	"github.com/finadm/bank_recon_app/internal/middleware"
)

// --- Mock StatementService ---
type MockStatementService struct {
	mock.Mock
}

func (m *MockStatementService) GetStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	args := m.Called(ctx, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) ListStatements(ctx context.Context, params dto.ListStatementsParams) (*dto.ListStatementsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListStatementsResponse), args.Error(1)
}
func (m *MockStatementService) GetStatementSummary(ctx context.Context, statementID string) (*dto.StatementSummary, error) {
	args := m.Called(ctx, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StatementSummary), args.Error(1)
}
func (m *MockStatementService) UploadStatement(ctx context.Context, file dto.FileUpload, operatorID string) (*domain.Statement, error) {
	args := m.Called(ctx, file, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) UploadStatementBatch(ctx context.Context, files []dto.FileUpload, operatorID string) (*dto.BatchUploadResult, error) {
	args := m.Called(ctx, files, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchUploadResult), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.StatementSvcFacade = (*MockStatementService)(nil)

// --- Test Suite ---
type StatementHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockStatementService *MockStatementService
	mockReconService     *MockReconService
}

func (suite *StatementHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockStatementService = new(MockStatementService)
	suite.mockReconService = new(MockReconService)

	v1 := suite.router.Group("/api/v1", middleware.OperatorMiddleware())
	handlers.RegisterStatementRoutes(v1, suite.mockStatementService, suite.mockReconService)
}

// postMultipart builds a multipart upload with the given file names and bodies.
func (suite *StatementHandlerTestSuite) postMultipart(files map[string]string, operatorID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		suite.Require().NoError(err)
		_, err = part.Write([]byte(content))
		suite.Require().NoError(err)
	}
	if len(files) == 0 {
		suite.Require().NoError(mw.WriteField("note", "empty"))
	}
	suite.Require().NoError(mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/statements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if operatorID != "" {
		req.Header.Set(middleware.OperatorHeader, operatorID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *StatementHandlerTestSuite) get(url string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func testStatement() *domain.Statement {
	return &domain.Statement{
		StatementID:    uuid.NewString(),
		BankID:         "GRANIT",
		AccountNumber:  "12100011-10679085",
		AccountIBAN:    "HU93121000111067908500000000",
		PeriodFrom:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		OpeningBalance: decimal.NewFromInt(1250000),
		ClosingBalance: decimal.NewFromInt(1187500),
		FileName:       "2025-03.xml",
		Status:         domain.StatementParsed,
		TotalCount:     42,
		CreditCount:    12,
		DebitCount:     30,
		MatchedCount:   17,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
		},
	}
}

// --- Test Cases ---

func (suite *StatementHandlerTestSuite) TestUploadStatements_Success() {
	operatorID := uuid.NewString()
	statementID := uuid.NewString()

	result := &dto.BatchUploadResult{
		Results: []dto.FileUploadResult{
			{FileName: "a.xml", StatementID: &statementID, Succeeded: true},
			{FileName: "b.xml", Succeeded: true},
		},
		Succeeded: 2,
	}

	suite.mockStatementService.On("UploadStatementBatch",
		mock.Anything,
		mock.MatchedBy(func(files []dto.FileUpload) bool {
			return len(files) == 2
		}),
		operatorID,
	).Return(result, nil).Once()

	w := suite.postMultipart(map[string]string{
		"a.xml": "<statement>a</statement>",
		"b.xml": "<statement>b</statement>",
	}, operatorID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BatchUploadResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(2, resp.Succeeded)
	suite.Equal(0, resp.Failed)
	suite.Len(resp.Results, 2)

	suite.mockStatementService.AssertExpectations(suite.T())
}

func (suite *StatementHandlerTestSuite) TestUploadStatements_NoFilesRejected() {
	w := suite.postMultipart(map[string]string{}, uuid.NewString())

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockStatementService.AssertNotCalled(suite.T(), "UploadStatementBatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatementHandlerTestSuite) TestUploadStatements_MissingOperatorHeader() {
	w := suite.postMultipart(map[string]string{"a.xml": "<statement>a</statement>"}, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockStatementService.AssertNotCalled(suite.T(), "UploadStatementBatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatementHandlerTestSuite) TestListStatements_Success() {
	nextToken := "b2Zmc2V0"
	resp := &dto.ListStatementsResponse{
		Statements: []dto.StatementResponse{
			dto.ToStatementResponse(*testStatement()),
			dto.ToStatementResponse(*testStatement()),
		},
		NextToken: &nextToken,
	}

	suite.mockStatementService.On("ListStatements",
		mock.Anything,
		mock.MatchedBy(func(params dto.ListStatementsParams) bool {
			return params.Limit == 2 && params.NextToken == nil
		}),
	).Return(resp, nil).Once()

	w := suite.get("/api/v1/statements?limit=2")

	suite.Equal(http.StatusOK, w.Code)
	var decoded dto.ListStatementsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &decoded))
	suite.Len(decoded.Statements, 2)
	suite.Require().NotNil(decoded.NextToken)
	suite.Equal(nextToken, *decoded.NextToken)

	suite.mockStatementService.AssertExpectations(suite.T())
}

func (suite *StatementHandlerTestSuite) TestGetStatement_Success() {
	statement := testStatement()

	suite.mockStatementService.On("GetStatementByID", mock.Anything, statement.StatementID).
		Return(statement, nil).Once()

	w := suite.get(fmt.Sprintf("/api/v1/statements/%s", statement.StatementID))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.StatementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(statement.StatementID, resp.StatementID)
	suite.Equal(domain.StatementParsed, resp.Status)
	suite.Equal(42, resp.TotalCount)
}

func (suite *StatementHandlerTestSuite) TestGetStatement_NotFound() {
	statementID := uuid.NewString()

	suite.mockStatementService.On("GetStatementByID", mock.Anything, statementID).
		Return(nil, fmt.Errorf("statement %s: %w", statementID, apperrors.ErrNotFound)).Once()

	w := suite.get(fmt.Sprintf("/api/v1/statements/%s", statementID))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *StatementHandlerTestSuite) TestGetStatementSummary_Success() {
	statementID := uuid.NewString()
	summary := &dto.StatementSummary{
		Total:           10,
		DocumentMatched: 4,
		OtherCost:       2,
		AutoCategorized: 1,
		Unresolved:      3,
	}

	suite.mockStatementService.On("GetStatementSummary", mock.Anything, statementID).
		Return(summary, nil).Once()

	w := suite.get(fmt.Sprintf("/api/v1/statements/%s/summary", statementID))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.StatementSummary
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(10, resp.Total)
	suite.Equal(4, resp.DocumentMatched)
	suite.Equal(3, resp.Unresolved)
}

func (suite *StatementHandlerTestSuite) TestListStatementTransactions_AppliesQueryParams() {
	statementID := uuid.NewString()

	suite.mockReconService.On("ListTransactions",
		mock.Anything,
		statementID,
		mock.MatchedBy(func(params dto.ListTransactionsParams) bool {
			return params.MatchStatus == "unmatched" && params.SortBy == "amount" && params.SortDesc
		}),
	).Return([]dto.TransactionResponse{}, nil).Once()

	w := suite.get(fmt.Sprintf("/api/v1/statements/%s/transactions?match=unmatched&sortBy=amount&desc=true", statementID))

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReconService.AssertExpectations(suite.T())
}

func (suite *StatementHandlerTestSuite) TestListStatementTransactions_StatementNotFound() {
	statementID := uuid.NewString()

	suite.mockReconService.On("ListTransactions", mock.Anything, statementID, mock.Anything).
		Return(nil, fmt.Errorf("statement %s: %w", statementID, apperrors.ErrNotFound)).Once()

	w := suite.get(fmt.Sprintf("/api/v1/statements/%s/transactions", statementID))

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestStatementHandler(t *testing.T) {
	suite.Run(t, new(StatementHandlerTestSuite))
}
