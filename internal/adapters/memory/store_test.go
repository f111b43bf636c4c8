package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func saleEntry(id string, entryDate, createdAt time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:          id,
		PNR:         "PNR" + id,
		Kind:        domain.KindSale,
		Source:      "Fly Baghdad",
		Beneficiary: "Acme Travel",
		Currency:    domain.CurrencyUSD,
		EntryDate:   entryDate,
		IssueDate:   entryDate,
		Status:      domain.StatusPersisted,
		Passengers: []domain.PassengerLine{{
			ID: id + "-p1", Name: "Ali", PassengerType: domain.PassengerAdult,
			PurchasePrice: decimal.NewFromInt(100), SalePrice: decimal.NewFromInt(120),
		}},
		AuditFields: domain.NewAuditFields("u1", createdAt),
	}
}

func seedGroup(t *testing.T, s *Store, id, name string) {
	t.Helper()
	require.NoError(t, s.SaveGroup(context.Background(), domain.PermissionGroup{
		ID: id, Name: name, Grants: domain.Grants{domain.ModuleTickets: {domain.ActionView}},
	}))
}

func TestStore_GroupNamesAreCaseInsensitive(t *testing.T) {
	s := NewStore()
	seedGroup(t, s, "g1", "Sales")

	err := s.SaveGroup(context.Background(), domain.PermissionGroup{ID: "g2", Name: "sales"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	g, err := s.FindGroupByName(context.Background(), " SALES ")
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)
}

func TestStore_ReturnedGroupDoesNotAliasStoredGrants(t *testing.T) {
	s := NewStore()
	seedGroup(t, s, "g1", "Sales")

	g, err := s.FindGroupByID(context.Background(), "g1")
	require.NoError(t, err)
	g.Grants[domain.ModuleTickets][0] = domain.ActionDelete

	again, err := s.FindGroupByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, again.Grants.Has(domain.ModuleTickets, domain.ActionView))
}

func TestStore_DeleteReferencedGroupFails(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedGroup(t, s, "g1", "Sales")
	require.NoError(t, s.SavePrincipal(ctx, domain.Principal{ID: "p1", Name: "Sara", Email: "sara@example.com", PermissionGroupID: "g1", Active: true}))

	assert.ErrorIs(t, s.DeleteGroup(ctx, "g1"), apperrors.ErrValidation)
	assert.ErrorIs(t, s.DeleteGroup(ctx, "missing"), apperrors.ErrNotFound)
}

func TestStore_PrincipalEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedGroup(t, s, "g1", "Sales")
	require.NoError(t, s.SavePrincipal(ctx, domain.Principal{ID: "p1", Name: "Sara", Email: "sara@example.com", PermissionGroupID: "g1"}))

	err := s.SavePrincipal(ctx, domain.Principal{ID: "p2", Name: "Sara", Email: "SARA@example.com", PermissionGroupID: "g1"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	err = s.SavePrincipal(ctx, domain.Principal{ID: "p3", Name: "Omar", Email: "omar@example.com", PermissionGroupID: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	n, err := s.CountPrincipalsByGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_DuplicateIDReasonIsGeneric(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedGroup(t, s, "g1", "Sales")
	require.NoError(t, s.SavePrincipal(ctx, domain.Principal{ID: "p1", Name: "Sara", Email: "sara@example.com", PermissionGroupID: "g1"}))

	err := s.SavePrincipal(ctx, domain.Principal{ID: "p1", Name: "Omar", Email: "omar@example.com", PermissionGroupID: "g1"})
	require.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Contains(t, err.Error(), "p1")
	assert.Equal(t, "record already exists", apperrors.FromError(err).Message)
}

func TestStore_CanceledContextIsStoreUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStore().CountPrincipals(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestStore_InitializeSystemHasOneWinner(t *testing.T) {
	s := NewStore()
	const racers = 16

	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			group := domain.NewSuperAdminGroup(fmt.Sprintf("g%d", i), "", t0)
			principal := domain.Principal{
				ID: fmt.Sprintf("p%d", i), Name: "Admin", Email: fmt.Sprintf("admin%d@example.com", i), Active: true,
				AuditFields: domain.NewAuditFields("", t0),
			}
			_, errs[i] = s.InitializeSystem(context.Background(), group, principal)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrAlreadyInitialized)
	}
	assert.Equal(t, 1, wins)

	n, err := s.CountPrincipals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	groups, err := s.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	state, err := s.FindSystemState(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Initialized)
}

func TestStore_InitializeSystemReusesExistingSuperAdminGroup(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveGroup(ctx, domain.PermissionGroup{ID: "old", Name: domain.SuperAdminGroupName}))

	stored, err := s.InitializeSystem(ctx, domain.NewSuperAdminGroup("new", "", t0),
		domain.Principal{ID: "p1", Name: "Admin", Email: "admin@example.com", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "old", stored.ID)
	assert.True(t, stored.IsAdmin)

	p, err := s.FindPrincipalByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "old", p.PermissionGroupID)
}

func TestStore_ListEntriesPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 0; i < 5; i++ {
		day := t0.AddDate(0, 0, i)
		require.NoError(t, s.SaveEntry(ctx, saleEntry(fmt.Sprintf("e%d", i), day, day)))
	}
	// same entry date, tie broken by created_at
	require.NoError(t, s.SaveEntry(ctx, saleEntry("e5", t0.AddDate(0, 0, 4), t0.AddDate(0, 0, 4).Add(time.Minute))))

	var ids []string
	var token *string
	for pages := 0; pages < 10; pages++ {
		page, next, err := s.ListEntries(ctx, domain.LedgerFilter{Limit: 2, NextToken: token})
		require.NoError(t, err)
		for _, e := range page {
			ids = append(ids, e.ID)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []string{"e5", "e4", "e3", "e2", "e1", "e0"}, ids)
}

func TestStore_ListEntriesRejectsBadToken(t *testing.T) {
	bad := "not-a-token!"
	_, _, err := NewStore().ListEntries(context.Background(), domain.LedgerFilter{NextToken: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStore_RemovedEntriesAreHiddenAndEmitEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewStore()
	events, err := s.SubscribeEntries(ctx, domain.LedgerFilter{})
	require.NoError(t, err)

	require.NoError(t, s.SaveEntry(ctx, saleEntry("e1", t0, t0)))
	require.NoError(t, s.MarkEntryRemoved(ctx, "e1", t0.Add(time.Hour), "u2"))
	assert.ErrorIs(t, s.MarkEntryRemoved(ctx, "e1", t0.Add(time.Hour), "u2"), apperrors.ErrNotFound)

	assert.Equal(t, domain.EventEntryCreated, (<-events).Type)
	assert.Equal(t, domain.EventEntryRemoved, (<-events).Type)

	page, _, err := s.ListEntries(ctx, domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, page)

	stored, err := s.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRemoved, stored.Status)
	assert.Equal(t, "u2", stored.LastUpdatedBy)

	inRange, err := s.FindEntriesByEntryDate(ctx, t0, t0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, inRange)
}

func TestStore_UpdateEntryKeepsImmutableFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveEntry(ctx, saleEntry("e1", t0, t0)))

	changed := saleEntry("e1", t0, t0.Add(time.Hour))
	changed.Kind = domain.KindRefund
	changed.CreatedBy = "intruder"
	changed.Notes = "rebooked"
	require.NoError(t, s.UpdateEntry(ctx, changed))

	stored, err := s.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSale, stored.Kind)
	assert.Equal(t, "u1", stored.CreatedBy)
	assert.Equal(t, t0, stored.CreatedAt)
	assert.Equal(t, "rebooked", stored.Notes)
}

func TestStore_RatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.FindLatestRate(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	for i, r := range []int64{1300, 1310, 1320} {
		require.NoError(t, s.AppendRate(ctx, domain.ExchangeRate{
			ID: fmt.Sprintf("r%d", i), Rate: decimal.NewFromInt(r), RecordedAt: t0.Add(time.Duration(i) * time.Hour),
		}))
	}
	latest, err := s.FindLatestRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r2", latest.ID)

	recent, err := s.ListRecentRates(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r1", recent[1].ID)
}
