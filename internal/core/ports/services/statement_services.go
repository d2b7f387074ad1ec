package services

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/dto"
)

// StatementIngestor is the consumed contract of the external statement parser.
// It receives one raw file and returns the fully parsed statement, or a typed
// failure (unsupported format, size exceeded).
type StatementIngestor interface {
	Ingest(ctx context.Context, file dto.FileUpload) (*dto.ParsedStatement, error)
}

// StatementReaderSvc defines read operations for statements.
type StatementReaderSvc interface {
	// GetStatementByID retrieves one statement.
	GetStatementByID(ctx context.Context, statementID string) (*domain.Statement, error)

	// ListStatements retrieves a paginated list of statements.
	ListStatements(ctx context.Context, params dto.ListStatementsParams) (*dto.ListStatementsResponse, error)

	// GetStatementSummary reports the resolution channels of a statement's
	// transactions.
	GetStatementSummary(ctx context.Context, statementID string) (*dto.StatementSummary, error)
}

// StatementWriterSvc defines the upload orchestration.
type StatementWriterSvc interface {
	// UploadStatement runs the full per-file upload flow: duplicate detection,
	// status lifecycle, parsing via the ingestor, bulk transaction insert.
	UploadStatement(ctx context.Context, file dto.FileUpload, operatorID string) (*domain.Statement, error)

	// UploadStatementBatch submits files strictly sequentially; a failed file
	// never aborts its siblings. Per-file outcomes plus aggregate counts.
	UploadStatementBatch(ctx context.Context, files []dto.FileUpload, operatorID string) (*dto.BatchUploadResult, error)
}

// StatementSvcFacade combines the statement service interfaces.
type StatementSvcFacade interface {
	StatementReaderSvc
	StatementWriterSvc
}
