package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/middleware"
)

var (
	ErrDuplicateStatement = errors.New("statement file was already uploaded for this account")
	ErrEmptyFile          = errors.New("statement file is empty")
)

const defaultListLimit = 20

// statementService orchestrates the statement upload lifecycle. Parsing itself
// is delegated to the external ingestor; this service owns duplicate detection,
// the status state machine, persistence and the auto-categorization pass.
type statementService struct {
	stmtRepo       portsrepo.StatementRepositoryWithTx
	txnRepo        portsrepo.TransactionRepositoryWithTx
	otherCostRepo  portsrepo.OtherCostRepositoryFacade
	ingestor       portssvc.StatementIngestor
	maxUploadBytes int64
}

// NewStatementService creates a new statement service. maxUploadBytes of zero
// disables the local size pre-check.
func NewStatementService(stmtRepo portsrepo.StatementRepositoryWithTx, txnRepo portsrepo.TransactionRepositoryWithTx, otherCostRepo portsrepo.OtherCostRepositoryFacade, ingestor portssvc.StatementIngestor, maxUploadBytes int64) portssvc.StatementSvcFacade {
	return &statementService{
		stmtRepo:       stmtRepo,
		txnRepo:        txnRepo,
		otherCostRepo:  otherCostRepo,
		ingestor:       ingestor,
		maxUploadBytes: maxUploadBytes,
	}
}

// Ensure statementService implements the portssvc.StatementSvcFacade interface
var _ portssvc.StatementSvcFacade = (*statementService)(nil)

// UploadStatement runs the full per-file flow: persist as UPLOADED, advance to
// PARSING, parse via the ingestor, duplicate-check by content hash, bulk-insert
// transactions, mark PARSED. Any parse failure lands the statement in ERROR
// with the reason retained.
// Implements portssvc.StatementWriterSvc
func (s *statementService) UploadStatement(ctx context.Context, file dto.FileUpload, operatorID string) (*domain.Statement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if file.FileName == "" || len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, file.FileName)
	}
	if s.maxUploadBytes > 0 && int64(len(file.Content)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", apperrors.ErrFileTooLarge, file.FileName, len(file.Content))
	}

	sum := sha256.Sum256(file.Content)
	fileHash := hex.EncodeToString(sum[:])

	now := time.Now().UTC()
	statement := domain.Statement{
		StatementID: uuid.NewString(),
		FileName:    file.FileName,
		FileHash:    fileHash,
		FileSize:    int64(len(file.Content)),
		Status:      domain.StatementUploaded,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     operatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: operatorID,
		},
	}

	if err := s.stmtRepo.SaveStatement(ctx, statement); err != nil {
		return nil, fmt.Errorf("failed to save statement: %w", err)
	}
	if err := s.transition(ctx, &statement, domain.StatementParsing, nil, operatorID); err != nil {
		return nil, err
	}

	parsed, err := s.ingestor.Ingest(ctx, file)
	if err != nil {
		s.failStatement(ctx, &statement, err.Error(), operatorID)
		logger.Warn("Statement parse failed",
			slog.String("statement_id", statement.StatementID),
			slog.String("file_name", file.FileName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// Duplicate detection keys on account plus content hash; the file name is
	// irrelevant, renaming a file does not make it a new statement.
	existing, err := s.stmtRepo.FindAcceptedStatementByHash(ctx, parsed.AccountNumber, fileHash)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		// The statement must not stay stuck in PARSING.
		s.failStatement(ctx, &statement, "duplicate check failed: "+err.Error(), operatorID)
		return nil, fmt.Errorf("failed duplicate check: %w", err)
	}
	if existing != nil && existing.StatementID != statement.StatementID {
		reason := fmt.Sprintf("duplicate of statement %s", existing.StatementID)
		s.failStatement(ctx, &statement, reason, operatorID)
		return nil, fmt.Errorf("%w: %s", ErrDuplicateStatement, file.FileName)
	}

	statement.BankID = parsed.BankID
	statement.AccountNumber = parsed.AccountNumber
	statement.AccountIBAN = parsed.AccountIBAN
	statement.PeriodFrom = parsed.PeriodFrom
	statement.PeriodTo = parsed.PeriodTo
	statement.OpeningBalance = parsed.OpeningBalance
	statement.ClosingBalance = parsed.ClosingBalance
	statement.ParseWarnings = parsed.Warnings
	statement.Status = domain.StatementParsed
	statement.LastUpdatedAt = time.Now().UTC()

	transactions := buildTransactions(statement.StatementID, parsed.Transactions, operatorID)

	tx, err := s.stmtRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer s.stmtRepo.Rollback(ctx, tx)

	if err := s.stmtRepo.UpdateStatementParsed(ctx, tx, statement); err != nil {
		return nil, fmt.Errorf("failed to persist parsed statement: %w", err)
	}
	if err := s.txnRepo.SaveTransactions(ctx, tx, transactions); err != nil {
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}
	if err := s.stmtRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit parsed statement", err)
	}

	s.autoCategorize(ctx, transactions)

	if err := s.stmtRepo.RefreshStatementCounters(ctx, statement.StatementID); err != nil {
		logger.Warn("Failed to refresh statement counters", slog.String("statement_id", statement.StatementID), slog.String("error", err.Error()))
	}

	logger.Info("Statement uploaded",
		slog.String("statement_id", statement.StatementID),
		slog.String("file_name", file.FileName),
		slog.Int("transactions", len(transactions)),
	)
	return &statement, nil
}

// UploadStatementBatch submits files strictly sequentially, in the given
// order. A failed file is recorded and never aborts its siblings.
// Implements portssvc.StatementWriterSvc
func (s *statementService) UploadStatementBatch(ctx context.Context, files []dto.FileUpload, operatorID string) (*dto.BatchUploadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files submitted", apperrors.ErrValidation)
	}

	result := &dto.BatchUploadResult{
		Results: make([]dto.FileUploadResult, 0, len(files)),
	}
	for _, file := range files {
		statement, err := s.UploadStatement(ctx, file, operatorID)
		if err != nil {
			msg := err.Error()
			result.Results = append(result.Results, dto.FileUploadResult{
				FileName:  file.FileName,
				Succeeded: false,
				Error:     &msg,
			})
			result.Failed++
			continue
		}
		id := statement.StatementID
		result.Results = append(result.Results, dto.FileUploadResult{
			FileName:    file.FileName,
			StatementID: &id,
			Succeeded:   true,
		})
		result.Succeeded++
	}
	return result, nil
}

// GetStatementByID retrieves one statement.
// Implements portssvc.StatementReaderSvc
func (s *statementService) GetStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	return s.stmtRepo.FindStatementByID(ctx, statementID)
}

// ListStatements retrieves a paginated list of statements, newest first.
// Implements portssvc.StatementReaderSvc
func (s *statementService) ListStatements(ctx context.Context, params dto.ListStatementsParams) (*dto.ListStatementsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	statements, nextToken, err := s.stmtRepo.ListStatements(ctx, limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListStatementsResponse{
		Statements: make([]dto.StatementResponse, len(statements)),
		NextToken:  nextToken,
	}
	for i, st := range statements {
		resp.Statements[i] = dto.ToStatementResponse(st)
	}
	return resp, nil
}

// GetStatementSummary reports the three resolution channels of a statement's
// transactions. A document match takes precedence when a transaction somehow
// carries both a match and a categorization; the channels are never summed twice.
// Implements portssvc.StatementReaderSvc
func (s *statementService) GetStatementSummary(ctx context.Context, statementID string) (*dto.StatementSummary, error) {
	if _, err := s.stmtRepo.FindStatementByID(ctx, statementID); err != nil {
		return nil, err
	}

	transactions, err := s.txnRepo.ListTransactionsByStatement(ctx, statementID)
	if err != nil {
		return nil, err
	}
	costs, err := s.otherCostRepo.ListOtherCostsByStatement(ctx, statementID)
	if err != nil {
		return nil, err
	}

	costByTxn := make(map[string]domain.OtherCost, len(costs))
	for _, c := range costs {
		if c.TransactionID != nil {
			costByTxn[*c.TransactionID] = c
		}
	}

	summary := &dto.StatementSummary{Total: len(transactions)}
	for _, txn := range transactions {
		switch {
		case txn.IsMatched():
			summary.DocumentMatched++
		case hasCost(costByTxn, txn.TransactionID, false):
			summary.OtherCost++
		case hasCost(costByTxn, txn.TransactionID, true):
			summary.AutoCategorized++
		default:
			summary.Unresolved++
		}
	}
	return summary, nil
}

// hasCost reports whether the transaction carries an other-cost record of the
// requested origin (system-automatic or operator-entered).
func hasCost(costs map[string]domain.OtherCost, transactionID string, system bool) bool {
	cost, ok := costs[transactionID]
	if !ok {
		return false
	}
	return (cost.CreatedBy == systemActor) == system
}

// transition advances the statement status, enforcing the forward-only lifecycle.
func (s *statementService) transition(ctx context.Context, statement *domain.Statement, next domain.StatementStatus, parseError *string, operatorID string) error {
	if !statement.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move statement from %s to %s", apperrors.ErrConflict, statement.Status, next)
	}
	now := time.Now().UTC()
	if err := s.stmtRepo.UpdateStatementStatus(ctx, statement.StatementID, next, parseError, operatorID, now); err != nil {
		return fmt.Errorf("failed to update statement status: %w", err)
	}
	statement.Status = next
	statement.ParseError = parseError
	statement.LastUpdatedAt = now
	statement.LastUpdatedBy = operatorID
	return nil
}

// failStatement lands the statement in ERROR, keeping the reason. Errors here
// are logged only; the caller's original failure is what gets surfaced.
func (s *statementService) failStatement(ctx context.Context, statement *domain.Statement, reason string, operatorID string) {
	if err := s.transition(ctx, statement, domain.StatementError, &reason, operatorID); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to mark statement as errored",
			slog.String("statement_id", statement.StatementID),
			slog.String("error", err.Error()),
		)
	}
}

// buildTransactions converts parsed lines into unmatched domain transactions.
func buildTransactions(statementID string, parsed []dto.ParsedTransaction, operatorID string) []domain.Transaction {
	now := time.Now().UTC()
	transactions := make([]domain.Transaction, len(parsed))
	for i, p := range parsed {
		transactions[i] = domain.Transaction{
			TransactionID:    uuid.NewString(),
			StatementID:      statementID,
			Type:             p.Type,
			BookingDate:      p.BookingDate,
			ValueDate:        p.ValueDate,
			Amount:           p.Amount,
			Currency:         p.Currency,
			Description:      p.Description,
			Reference:        p.Reference,
			PayerName:        p.PayerName,
			PayerIBAN:        p.PayerIBAN,
			PayerAccountNo:   p.PayerAccountNo,
			PayerBIC:         p.PayerBIC,
			BeneficiaryName:  p.BeneficiaryName,
			BeneficiaryIBAN:  p.BeneficiaryIBAN,
			BeneficiaryAccNo: p.BeneficiaryAccNo,
			BeneficiaryBIC:   p.BeneficiaryBIC,
			MatchConfidence:  decimal.Zero,
			MatchMethod:      domain.MethodNone,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     operatorID,
				LastUpdatedAt: now,
				LastUpdatedBy: operatorID,
			},
		}
	}
	return transactions
}

// autoCategorize resolves freshly parsed debits whose counterparty already has
// a learned pattern. This is the third resolution channel; it records an
// other-cost under the system actor and never touches match state. Failures
// are logged per transaction, the upload itself already succeeded.
func (s *statementService) autoCategorize(ctx context.Context, transactions []domain.Transaction) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	for i := range transactions {
		txn := &transactions[i]
		if txn.IsCredit() {
			continue
		}
		counterparty := domain.NormalizeCounterparty(txn.PartnerName())
		if counterparty == "" {
			continue
		}

		pattern, err := s.otherCostRepo.FindPatternByCounterparty(ctx, counterparty)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Pattern lookup failed", slog.String("transaction_id", txn.TransactionID), slog.String("error", err.Error()))
			}
			continue
		}

		transactionID := txn.TransactionID
		cost := domain.OtherCost{
			OtherCostID:   uuid.NewString(),
			TransactionID: &transactionID,
			Category:      pattern.Category,
			Amount:        txn.Amount.Abs(),
			Currency:      txn.Currency,
			Date:          txn.BookingDate,
			Description:   txn.Description,
			Notes:         fmt.Sprintf("auto-categorized from pattern %s", pattern.PatternID),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     systemActor,
				LastUpdatedAt: now,
				LastUpdatedBy: systemActor,
			},
		}
		if err := s.otherCostRepo.SaveOtherCost(ctx, cost); err != nil {
			logger.Warn("Auto-categorization failed", slog.String("transaction_id", txn.TransactionID), slog.String("error", err.Error()))
			continue
		}

		pattern.UseCount++
		pattern.LastUsedAt = now
		pattern.LastUpdatedAt = now
		pattern.LastUpdatedBy = systemActor
		if err := s.otherCostRepo.UpsertPattern(ctx, *pattern); err != nil {
			logger.Warn("Pattern use-count bump failed", slog.String("pattern_id", pattern.PatternID), slog.String("error", err.Error()))
		}

		logger.Info("Transaction auto-categorized",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("category", string(pattern.Category)),
		)
	}
}
