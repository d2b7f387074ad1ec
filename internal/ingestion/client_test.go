package ingestion_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadm/bank_recon_app/internal/apperrors"
	"github.com/finadm/bank_recon_app/internal/dto"
	"github.com/finadm/bank_recon_app/internal/ingestion"
)

func TestIngest_Success(t *testing.T) {
	parsed := dto.ParsedStatement{
		BankID:         "GRANIT",
		AccountNumber:  "12100011-10679085",
		OpeningBalance: decimal.NewFromInt(1250000),
		ClosingBalance: decimal.NewFromInt(1187500),
		Transactions: []dto.ParsedTransaction{
			{Amount: decimal.NewFromInt(-62500), Currency: "HUF", BeneficiaryName: "Szolgaltato Kft"},
		},
	}

	var gotFileName string
	var gotContent []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/parse", r.URL.Path)

		mr, err := r.MultipartReader()
		require.NoError(t, err)
		part, err := mr.NextPart()
		require.NoError(t, err)
		require.Equal(t, "file", part.FormName())
		gotFileName = part.FileName()
		gotContent, err = io.ReadAll(part)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(parsed))
	}))
	defer server.Close()

	client := ingestion.NewClient(server.URL, 5*time.Second)
	result, err := client.Ingest(context.Background(), dto.FileUpload{
		FileName: "2025-03.xml",
		Content:  []byte("<statement>raw</statement>"),
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-03.xml", gotFileName)
	assert.Equal(t, []byte("<statement>raw</statement>"), gotContent)
	assert.Equal(t, "GRANIT", result.BankID)
	require.Len(t, result.Transactions, 1)
	assert.True(t, result.Transactions[0].Amount.Equal(decimal.NewFromInt(-62500)))
}

func TestIngest_UnsupportedFormat(t *testing.T) {
	for _, status := range []int{http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown statement layout"})
		}))

		client := ingestion.NewClient(server.URL, 5*time.Second)
		_, err := client.Ingest(context.Background(), dto.FileUpload{FileName: "notes.txt", Content: []byte("plain text")})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
		assert.Contains(t, err.Error(), "notes.txt")
		assert.Contains(t, err.Error(), "unknown statement layout")
		server.Close()
	}
}

func TestIngest_FileTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	client := ingestion.NewClient(server.URL, 5*time.Second)
	_, err := client.Ingest(context.Background(), dto.FileUpload{FileName: "huge.xml", Content: []byte("x")})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
}

func TestIngest_UnexpectedStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream parser crashed"))
	}))
	defer server.Close()

	client := ingestion.NewClient(server.URL, 5*time.Second)
	_, err := client.Ingest(context.Background(), dto.FileUpload{FileName: "a.xml", Content: []byte("x")})

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream parser crashed")
}

func TestIngest_ServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := ingestion.NewClient(server.URL, time.Second)
	_, err := client.Ingest(context.Background(), dto.FileUpload{FileName: "a.xml", Content: []byte("x")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
