package services

import (
	"context"

	"github.com/finadm/bank_recon_app/internal/core/domain"
)

// MatchProposer is the consumed matching-strategy contract. Given one
// transaction and a bounded candidate corpus it proposes zero or more
// candidates with method and confidence; confidence must strictly decrease by
// specificity tier. The engine picks the single best candidate itself.
type MatchProposer interface {
	Propose(ctx context.Context, transaction domain.Transaction, corpus domain.MatchCorpus) ([]domain.MatchCandidate, error)
}
