package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres repository. ctx bounds the
// lifetime of the ledger LISTEN connection.
func NewRepositoryProvider(ctx context.Context, dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(ctx, dbPool)

	return portsrepo.RepositoryProvider{
		GroupRepo:        newPgxPermissionGroupRepository(dbPool),
		PrincipalRepo:    newPgxPrincipalRepository(dbPool),
		CredentialRepo:   newPgxCredentialRepository(dbPool),
		SystemRepo:       newPgxSystemStateRepository(dbPool),
		LedgerRepo:       ledgerRepo,
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		ReportingRepo:    ledgerRepo,
	}
}
