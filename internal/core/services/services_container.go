package services

import (
	portsrepo "github.com/finadm/bank_recon_app/internal/core/ports/repositories"
	portssvc "github.com/finadm/bank_recon_app/internal/core/ports/services"
	"github.com/finadm/bank_recon_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ingestor portssvc.StatementIngestor, proposer portssvc.MatchProposer) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Recon = NewReconService(
		repos.TransactionRepo,
		repos.StatementRepo,
		repos.DocumentRepo,
		proposer,
	)
	container.Statement = NewStatementService(
		repos.StatementRepo,
		repos.TransactionRepo,
		repos.OtherCostRepo,
		ingestor,
		cfg.MaxUploadBytes,
	)
	container.OtherCost = NewOtherCostService(
		repos.TransactionRepo,
		repos.OtherCostRepo,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ReconSvcFacade     = (*reconService)(nil)
	_ portssvc.StatementSvcFacade = (*statementService)(nil)
	_ portssvc.OtherCostSvcFacade = (*otherCostService)(nil)
)
