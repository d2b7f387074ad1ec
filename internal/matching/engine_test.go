package matching_test

import (
	"context"
	"testing"
	"time"

	"github.com/finadm/bank_recon_app/internal/core/domain"
	"github.com/finadm/bank_recon_app/internal/matching"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creditTxn(amount, reference, payerName, payerIBAN string) domain.Transaction {
	return domain.Transaction{
		TransactionID: "txn-1",
		Amount:        decimal.RequireFromString(amount),
		Currency:      "HUF",
		Reference:     reference,
		PayerName:     payerName,
		PayerIBAN:     payerIBAN,
		BookingDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func openInvoice(id, number, partner, iban, amount string) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     id,
		InvoiceNumber: number,
		PartnerName:   partner,
		PartnerIBAN:   iban,
		GrossAmount:   decimal.RequireFromString(amount),
		Currency:      "HUF",
		DueDate:       time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Status:        domain.InvoiceOpen,
	}
}

func TestPropose_ReferenceExactBeatsAmountIBAN(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultConfig())
	txn := creditTxn("1000.00", "INV-2025/042", "Acme Kft", "HU42 1177 0000 1234 5678 0000 0000")

	corpus := domain.MatchCorpus{OpenInvoices: []domain.Invoice{
		openInvoice("inv-a", "INV-2025/099", "Acme Kft", "HU42117700001234567800000000", "1000.00"),
		openInvoice("inv-b", "INV-2025/042", "Acme Kft", "", "1000.00"),
	}}

	candidates, err := engine.Propose(context.Background(), txn, corpus)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	best := candidates[0]
	assert.Equal(t, "inv-b", best.Ref.DocumentID)
	assert.Equal(t, domain.MethodReferenceExact, best.Method)
	assert.Equal(t, "0.95", best.Confidence.StringFixed(2))
}

func TestPropose_DeterministicRegardlessOfCorpusOrder(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultConfig())
	txn := creditTxn("500.00", "", "Acme Kft", "HU42117700001234567800000000")

	// Two invoices tie on the AMOUNT_IBAN tier; document id breaks the tie.
	a := openInvoice("inv-a", "X-1", "Acme Kft", "HU42117700001234567800000000", "500.00")
	b := openInvoice("inv-b", "X-2", "Acme Kft", "HU42117700001234567800000000", "500.00")

	forward, err := engine.Propose(context.Background(), txn, domain.MatchCorpus{OpenInvoices: []domain.Invoice{a, b}})
	require.NoError(t, err)
	reversed, err := engine.Propose(context.Background(), txn, domain.MatchCorpus{OpenInvoices: []domain.Invoice{b, a}})
	require.NoError(t, err)

	require.Len(t, forward, 2)
	require.Len(t, reversed, 2)
	assert.Equal(t, forward[0].Ref.DocumentID, reversed[0].Ref.DocumentID)
	assert.Equal(t, "inv-a", forward[0].Ref.DocumentID)
}

func TestPropose_BatchSumForOnePartner(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultConfig())
	txn := creditTxn("300.00", "", "Acme Kft", "HU42117700001234567800000000")

	corpus := domain.MatchCorpus{OpenInvoices: []domain.Invoice{
		openInvoice("inv-2", "A-2", "Acme Kft", "HU42117700001234567800000000", "200.00"),
		openInvoice("inv-1", "A-1", "Acme Kft", "HU42117700001234567800000000", "100.00"),
		openInvoice("inv-x", "B-1", "Other Bt", "HU00000000000000000000000000", "300.00"),
	}}

	candidates, err := engine.Propose(context.Background(), txn, corpus)
	require.NoError(t, err)

	var batch *domain.MatchCandidate
	for i := range candidates {
		if candidates[i].IsBatch() {
			batch = &candidates[i]
			break
		}
	}
	require.NotNil(t, batch, "expected a batch candidate")
	assert.Equal(t, []string{"inv-1", "inv-2"}, batch.InvoiceIDs)
	assert.Equal(t, domain.MethodAmountIBAN, batch.Method)
}

func TestPropose_DebitMatchesOpenTransfer(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultConfig())
	txn := domain.Transaction{
		TransactionID:   "txn-out",
		Amount:          decimal.RequireFromString("-750.00"),
		Currency:        "HUF",
		Reference:       "PAYRUN-7",
		BeneficiaryName: "Supplier Zrt",
		BeneficiaryIBAN: "HU11223300001234567800000000",
		BookingDate:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	corpus := domain.MatchCorpus{OpenTransfers: []domain.OutgoingTransfer{{
		TransferID:      "tr-1",
		Reference:       "PAYRUN-7",
		BeneficiaryName: "Supplier Zrt",
		BeneficiaryIBAN: "HU11223300001234567800000000",
		Amount:          decimal.RequireFromString("750.00"),
		Currency:        "HUF",
	}}}

	candidates, err := engine.Propose(context.Background(), txn, corpus)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, domain.MethodTransferExact, candidates[0].Method)
	assert.Equal(t, "tr-1", candidates[0].Ref.DocumentID)
}

func TestPropose_ReimbursementPair(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultConfig())
	inflow := creditTxn("120.00", "", "Tax Office", "HU99000011112222333344445555")

	outflow := domain.Transaction{
		TransactionID:   "txn-out",
		Amount:          decimal.RequireFromString("-120.00"),
		Currency:        "HUF",
		BeneficiaryName: "Tax Office",
		BeneficiaryIBAN: "HU99000011112222333344445555",
		BookingDate:     time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
	}

	candidates, err := engine.Propose(context.Background(), inflow, domain.MatchCorpus{
		Reimbursements: []domain.Transaction{outflow},
	})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, domain.MethodReimbursementPair, candidates[0].Method)
	assert.Equal(t, domain.DocumentReimbursement, candidates[0].Ref.Kind)
	assert.Equal(t, "txn-out", candidates[0].Ref.DocumentID)
}

func TestPropose_NoCandidateIsANormalOutcome(t *testing.T) {
	engine := matching.NewEngine(matching.DefaultConfig())
	txn := creditTxn("42.00", "NO-SUCH-REF", "Nobody", "")

	candidates, err := engine.Propose(context.Background(), txn, domain.MatchCorpus{})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestConfig_ValidateRejectsNonDecreasingTiers(t *testing.T) {
	cfg := matching.DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.FuzzyNameConfidence = cfg.AmountIBANConfidence
	assert.Error(t, cfg.Validate())
}
