package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/dto"
)

// Client talks to the external statement parser service over HTTP. The parser
// owns format detection and parsing; this side only maps its responses onto
// the typed ingestion errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a parser service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ensure Client implements the portssvc.StatementIngestor interface
var _ portssvc.StatementIngestor = (*Client)(nil)

// parseErrorBody is the parser service's error envelope.
type parseErrorBody struct {
	Error string `json:"error"`
}

// Ingest submits one raw statement file and returns the parsed result.
// Implements portssvc.StatementIngestor
func (c *Client) Ingest(ctx context.Context, file dto.FileUpload) (*dto.ParsedStatement, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", file.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parser service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var parsed dto.ParsedStatement
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to decode parser response: %w", err)
		}
		return &parsed, nil
	case http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrUnsupportedFormat, file.FileName, readErrorMessage(resp.Body))
	case http.StatusRequestEntityTooLarge:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFileTooLarge, file.FileName)
	default:
		return nil, fmt.Errorf("parser service returned status %d: %s", resp.StatusCode, readErrorMessage(resp.Body))
	}
}

// readErrorMessage extracts the error message from a parser error response,
// falling back to the raw body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}
	var body parseErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return string(raw)
}
