package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/core/domain"
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/middleware"
	"github.com/finadm/bank_recon_app/internal/projection"
)

var (
	ErrNotMatched          = errors.New("transaction is not matched")
	ErrAlreadyApproved     = errors.New("match is already at approved confidence")
	ErrAlreadyMatched      = errors.New("transaction is already matched to a different document")
	ErrStrategyUnavailable = errors.New("matching strategy unavailable")
	ErrBadConfidence       = errors.New("confidence must be between 0.00 and 1.00")
)

var approvedConfidence = decimal.NewFromInt(1)

// reconService implements the reconciliation engine: the per-transaction match
// state machine and the projected listing.
type reconService struct {
	txnRepo  portsrepo.TransactionRepositoryWithTx
	stmtRepo portsrepo.StatementRepositoryWithTx
	docRepo  portsrepo.DocumentRepositoryFacade
	proposer portssvc.MatchProposer
}

// NewReconService creates a new reconciliation service.
func NewReconService(txnRepo portsrepo.TransactionRepositoryWithTx, stmtRepo portsrepo.StatementRepositoryWithTx, docRepo portsrepo.DocumentRepositoryFacade, proposer portssvc.MatchProposer) portssvc.ReconSvcFacade {
	return &reconService{
		txnRepo:  txnRepo,
		stmtRepo: stmtRepo,
		docRepo:  docRepo,
		proposer: proposer,
	}
}

// Ensure reconService implements the portssvc.ReconSvcFacade interface
var _ portssvc.ReconSvcFacade = (*reconService)(nil)

// validateConfidence checks the confidence an automatic method may assert:
// strictly between 0.00 and 1.00. Zero confidence is the unmatched state and
// full confidence is reserved for manual matches and explicit approval.
func validateConfidence(c decimal.Decimal) error {
	if c.IsNegative() || c.GreaterThan(approvedConfidence) {
		return fmt.Errorf("%w: got %s", ErrBadConfidence, c.String())
	}
	if c.IsZero() {
		return fmt.Errorf("%w: a match cannot assert confidence 0.00", ErrBadConfidence)
	}
	if c.Equal(approvedConfidence) {
		return fmt.Errorf("%w: an automatic method cannot assert confidence 1.00", ErrBadConfidence)
	}
	return nil
}

// appendMatchNote appends one audit note to the existing note trail.
func appendMatchNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

// resolveDocumentRef verifies that the referenced document exists.
func (s *reconService) resolveDocumentRef(ctx context.Context, ref domain.DocumentRef) error {
	switch ref.Kind {
	case domain.DocumentInvoice:
		_, err := s.docRepo.FindInvoiceByID(ctx, ref.DocumentID)
		return err
	case domain.DocumentTransfer:
		_, err := s.docRepo.FindTransferByID(ctx, ref.DocumentID)
		return err
	case domain.DocumentReimbursement:
		_, err := s.txnRepo.FindTransactionByID(ctx, ref.DocumentID)
		return err
	default:
		return fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, ref.Kind)
	}
}

// setMatchedRef sets the single document link that corresponds to the ref kind.
func setMatchedRef(txn *domain.Transaction, ref domain.DocumentRef) {
	id := ref.DocumentID
	switch ref.Kind {
	case domain.DocumentInvoice:
		txn.MatchedInvoiceID = &id
	case domain.DocumentTransfer:
		txn.MatchedTransferID = &id
	case domain.DocumentReimbursement:
		txn.MatchedReimbursementID = &id
	}
}

// Match records a single-document match on a transaction.
// Implements portssvc.ReconWriterSvc
func (s *reconService) Match(ctx context.Context, transactionID string, req dto.MatchRequest, operatorID *string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: unknown match method %q", apperrors.ErrValidation, req.Method)
	}
	confidence := req.Confidence.Round(2)
	if req.Method == domain.MethodManual {
		// A manual match is an operator assertion and always carries full confidence.
		if operatorID == nil {
			return nil, fmt.Errorf("%w: manual match requires an operator", apperrors.ErrValidation)
		}
		confidence = approvedConfidence
	} else if err := validateConfidence(confidence); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	ref := domain.DocumentRef{Kind: req.DocumentKind, DocumentID: req.DocumentID}
	if err := s.resolveDocumentRef(ctx, ref); err != nil {
		return nil, err
	}

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer s.txnRepo.Rollback(ctx, tx) // no-op after a successful commit

	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.IsMatched() {
		if current, ok := txn.MatchedRef(); ok && current == ref {
			// Retried identical match, nothing to change.
			logger.Info("Match retry is a no-op", slog.String("transaction_id", transactionID))
			return txn, nil
		}
		return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyMatched, transactionID)
	}

	now := time.Now().UTC()
	setMatchedRef(txn, ref)
	txn.MatchConfidence = confidence
	txn.MatchMethod = req.Method
	txn.MatchedAt = &now
	txn.MatchedBy = operatorID
	if req.Notes != "" {
		txn.MatchNotes = appendMatchNote(txn.MatchNotes, req.Notes)
	}
	txn.LastUpdatedAt = now
	if operatorID != nil {
		txn.LastUpdatedBy = *operatorID
	}

	if err := s.txnRepo.UpdateTransactionMatch(ctx, tx, *txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit match", err)
	}

	s.refreshCounters(ctx, txn.StatementID)

	logger.Info("Transaction matched",
		slog.String("transaction_id", transactionID),
		slog.String("document_kind", string(ref.Kind)),
		slog.String("document_id", ref.DocumentID),
		slog.String("method", string(req.Method)),
		slog.String("confidence", confidence.String()),
	)
	return txn, nil
}

// BatchMatch records a multi-invoice match on a transaction.
// Implements portssvc.ReconWriterSvc
func (s *reconService) BatchMatch(ctx context.Context, transactionID string, req dto.BatchMatchRequest, operatorID *string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: unknown match method %q", apperrors.ErrValidation, req.Method)
	}
	confidence := req.Confidence.Round(2)
	if req.Method == domain.MethodManual {
		if operatorID == nil {
			return nil, fmt.Errorf("%w: manual match requires an operator", apperrors.ErrValidation)
		}
		confidence = approvedConfidence
	} else if err := validateConfidence(confidence); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	invoiceIDs := uniqueStrings(req.InvoiceIDs)
	if len(invoiceIDs) == 0 {
		return nil, fmt.Errorf("%w: batch match requires at least one invoice", apperrors.ErrValidation)
	}

	found, err := s.docRepo.FindInvoicesByIDs(ctx, invoiceIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range invoiceIDs {
		if _, ok := found[id]; !ok {
			return nil, apperrors.NewNotFoundError("invoice " + id + " not found")
		}
	}

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	if txn.IsMatched() {
		if txn.IsBatchMatch && sameStringSet(txn.BatchInvoiceIDs, invoiceIDs) {
			logger.Info("Batch match retry is a no-op", slog.String("transaction_id", transactionID))
			return txn, nil
		}
		return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyMatched, transactionID)
	}

	now := time.Now().UTC()
	txn.IsBatchMatch = true
	txn.BatchInvoiceIDs = invoiceIDs
	txn.MatchConfidence = confidence
	txn.MatchMethod = req.Method
	txn.MatchedAt = &now
	txn.MatchedBy = operatorID
	if req.Notes != "" {
		txn.MatchNotes = appendMatchNote(txn.MatchNotes, req.Notes)
	}
	txn.LastUpdatedAt = now
	if operatorID != nil {
		txn.LastUpdatedBy = *operatorID
	}

	if err := s.txnRepo.UpdateTransactionMatch(ctx, tx, *txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit batch match", err)
	}

	s.refreshCounters(ctx, txn.StatementID)

	logger.Info("Transaction batch-matched",
		slog.String("transaction_id", transactionID),
		slog.Int("invoice_count", len(invoiceIDs)),
		slog.String("confidence", confidence.String()),
	)
	return txn, nil
}

// ApproveMatch raises a sub-1.00 match to operator-asserted certainty.
// Implements portssvc.ReconWriterSvc
func (s *reconService) ApproveMatch(ctx context.Context, transactionID string, approverID string) (*dto.ApproveMatchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	if !txn.IsMatched() {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotMatched, transactionID)
	}
	if txn.MatchConfidence.GreaterThanOrEqual(approvedConfidence) {
		return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyApproved, transactionID)
	}

	previous := txn.MatchConfidence
	now := time.Now().UTC()
	txn.MatchConfidence = approvedConfidence
	txn.ApprovedAt = &now
	txn.ApprovedBy = &approverID
	txn.MatchNotes = appendMatchNote(txn.MatchNotes, fmt.Sprintf("approved from %s", previous.String()))
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = approverID

	if err := s.txnRepo.UpdateTransactionMatch(ctx, tx, *txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit approval", err)
	}

	logger.Info("Match approved",
		slog.String("transaction_id", transactionID),
		slog.String("approver_id", approverID),
		slog.String("previous_confidence", previous.String()),
	)
	return &dto.ApproveMatchResponse{
		PreviousConfidence: previous,
		NewConfidence:      approvedConfidence,
	}, nil
}

// Unmatch clears the current match and reports how many documents were detached.
// Implements portssvc.ReconWriterSvc
func (s *reconService) Unmatch(ctx context.Context, transactionID string, operatorID *string) (*dto.UnmatchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	if !txn.IsMatched() {
		// Retried unmatch; already in the desired state.
		return &dto.UnmatchResponse{DocumentsDetached: 0}, nil
	}

	detached := 1
	if txn.IsBatchMatch {
		detached = len(txn.BatchInvoiceIDs)
	}

	now := time.Now().UTC()
	txn.ClearMatch()
	txn.MatchNotes = appendMatchNote(txn.MatchNotes, fmt.Sprintf("unmatched, detached %d", detached))
	txn.LastUpdatedAt = now
	if operatorID != nil {
		txn.LastUpdatedBy = *operatorID
	}

	if err := s.txnRepo.UpdateTransactionMatch(ctx, tx, *txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit unmatch", err)
	}

	s.refreshCounters(ctx, txn.StatementID)

	logger.Info("Transaction unmatched",
		slog.String("transaction_id", transactionID),
		slog.Int("documents_detached", detached),
	)
	return &dto.UnmatchResponse{DocumentsDetached: detached}, nil
}

// Rematch clears any current match and re-runs the matching strategy against
// the current candidate corpus. No candidate is a normal outcome.
// Implements portssvc.ReconWriterSvc
func (s *reconService) Rematch(ctx context.Context, transactionID string, operatorID *string) (*dto.RematchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.proposer == nil {
		return nil, ErrStrategyUnavailable
	}

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	corpus, err := s.buildCorpus(ctx, *txn)
	if err != nil {
		return nil, err
	}

	candidates, err := s.proposer.Propose(ctx, *txn, corpus)
	if err != nil {
		logger.Error("Matching strategy failed", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s", ErrStrategyUnavailable, err.Error())
	}

	wasMatched := txn.IsMatched()
	now := time.Now().UTC()
	txn.ClearMatch()
	txn.LastUpdatedAt = now
	if operatorID != nil {
		txn.LastUpdatedBy = *operatorID
	}

	if len(candidates) == 0 {
		if wasMatched {
			// The old match is gone even when the strategy finds nothing new.
			txn.MatchNotes = appendMatchNote(txn.MatchNotes, "rematch found no candidate")
			if err := s.txnRepo.UpdateTransactionMatch(ctx, tx, *txn); err != nil {
				return nil, err
			}
			if err := s.txnRepo.Commit(ctx, tx); err != nil {
				return nil, apperrors.NewAppError(500, "failed to commit rematch", err)
			}
			s.refreshCounters(ctx, txn.StatementID)
		}
		logger.Info("Rematch found no candidate", slog.String("transaction_id", transactionID))
		return &dto.RematchResponse{Matched: false}, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.BetterThan(best) {
			best = c
		}
	}

	if best.IsBatch() {
		txn.IsBatchMatch = true
		txn.BatchInvoiceIDs = best.InvoiceIDs
	} else {
		setMatchedRef(txn, best.Ref)
	}
	txn.MatchConfidence = best.Confidence.Round(2)
	txn.MatchMethod = best.Method
	txn.MatchedAt = &now
	txn.MatchedBy = nil // strategy result, not an operator assertion
	txn.MatchNotes = appendMatchNote(txn.MatchNotes, fmt.Sprintf("rematched via %s", best.Method))

	if err := s.txnRepo.UpdateTransactionMatch(ctx, tx, *txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to commit rematch", err)
	}

	s.refreshCounters(ctx, txn.StatementID)

	logger.Info("Transaction rematched",
		slog.String("transaction_id", transactionID),
		slog.String("method", string(best.Method)),
		slog.String("confidence", txn.MatchConfidence.String()),
	)

	resp := &dto.RematchResponse{
		Matched:    true,
		Method:     best.Method,
		Confidence: &txn.MatchConfidence,
	}
	if best.IsBatch() {
		resp.InvoiceIDs = best.InvoiceIDs
	} else {
		ref := best.Ref
		resp.Ref = &ref
	}
	return resp, nil
}

// buildCorpus assembles the bounded candidate set for the strategy.
func (s *reconService) buildCorpus(ctx context.Context, txn domain.Transaction) (domain.MatchCorpus, error) {
	var corpus domain.MatchCorpus

	invoices, err := s.docRepo.ListOpenInvoices(ctx, txn.Currency)
	if err != nil {
		return corpus, fmt.Errorf("failed to list open invoices: %w", err)
	}
	transfers, err := s.docRepo.ListOpenTransfers(ctx, txn.Currency)
	if err != nil {
		return corpus, fmt.Errorf("failed to list open transfers: %w", err)
	}
	reimbursements, err := s.txnRepo.ListReimbursementCandidates(ctx, txn)
	if err != nil {
		return corpus, fmt.Errorf("failed to list reimbursement candidates: %w", err)
	}

	corpus.OpenInvoices = invoices
	corpus.OpenTransfers = transfers
	corpus.Reimbursements = reimbursements
	return corpus, nil
}

// ListTransactions returns a statement's transactions through the filter and
// sort projection.
// Implements portssvc.ReconReaderSvc
func (s *reconService) ListTransactions(ctx context.Context, statementID string, params dto.ListTransactionsParams) ([]dto.TransactionResponse, error) {
	if _, err := s.stmtRepo.FindStatementByID(ctx, statementID); err != nil {
		return nil, err
	}

	transactions, err := s.txnRepo.ListTransactionsByStatement(ctx, statementID)
	if err != nil {
		return nil, err
	}

	filter := projection.Filter{
		TypeCategory: params.TypeCategory,
		MatchStatus:  params.MatchStatus,
		Query:        params.Query,
	}
	sortSpec := projection.Sort{
		Field: projection.SortField(params.SortBy),
		Desc:  params.SortDesc,
	}
	projected := projection.Apply(transactions, filter, sortSpec)

	return dto.ToTransactionResponses(projected), nil
}

// refreshCounters recomputes statement aggregates after a match mutation.
// Failure is logged, never surfaced; the counters are derived data.
func (s *reconService) refreshCounters(ctx context.Context, statementID string) {
	if err := s.stmtRepo.RefreshStatementCounters(ctx, statementID); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to refresh statement counters",
			slog.String("statement_id", statementID),
			slog.String("error", err.Error()),
		)
	}
}

// uniqueStrings returns the input with duplicates removed, order preserved.
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// sameStringSet reports whether the two slices hold the same IDs, order ignored.
func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
