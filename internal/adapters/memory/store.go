// Package memory is an in-process implementation of every repository port.
// It is used by tests and by single-instance deployments that opt out of Postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/adapters/events"
	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

// Store keeps all records behind one mutex. Values are copied on the way in
// and out so callers never alias stored state.
type Store struct {
	mu          sync.RWMutex
	groups      map[string]domain.PermissionGroup
	principals  map[string]domain.Principal
	credentials map[string]domain.Credential
	entries     map[string]domain.LedgerEntry
	rates       []domain.ExchangeRate
	state       domain.SystemState
	broker      *events.Broker
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		groups:      make(map[string]domain.PermissionGroup),
		principals:  make(map[string]domain.Principal),
		credentials: make(map[string]domain.Credential),
		entries:     make(map[string]domain.LedgerEntry),
		broker:      events.NewBroker(events.DefaultBufferSize),
	}
}

// Repositories exposes the store through every repository port.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		GroupRepo:        s,
		PrincipalRepo:    s,
		CredentialRepo:   s,
		SystemRepo:       s,
		LedgerRepo:       s,
		ExchangeRateRepo: s,
		ReportingRepo:    s,
	}
}

// Close ends all ledger subscriptions.
func (s *Store) Close() {
	s.broker.Close()
}

var (
	_ portsrepo.PermissionGroupRepositoryFacade = (*Store)(nil)
	_ portsrepo.PrincipalRepositoryFacade       = (*Store)(nil)
	_ portsrepo.CredentialRepositoryFacade      = (*Store)(nil)
	_ portsrepo.SystemStateRepositoryFacade     = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade          = (*Store)(nil)
	_ portsrepo.ExchangeRateRepositoryFacade    = (*Store)(nil)
	_ portsrepo.ReportingRepositoryFacade       = (*Store)(nil)
)

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
}

// --- permission groups ---

func (s *Store) FindGroupByID(ctx context.Context, groupID string) (*domain.PermissionGroup, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, notFound("permission group", groupID)
	}
	g = g.Clone()
	return &g, nil
}

func (s *Store) FindGroupByName(ctx context.Context, name string) (*domain.PermissionGroup, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.groupByNameLocked(name); ok {
		g = g.Clone()
		return &g, nil
	}
	return nil, notFound("permission group", name)
}

func (s *Store) groupByNameLocked(name string) (domain.PermissionGroup, bool) {
	for _, g := range s.groups {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g, true
		}
	}
	return domain.PermissionGroup{}, false
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.PermissionGroup, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]domain.PermissionGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, g.Clone())
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (s *Store) SaveGroup(ctx context.Context, group domain.PermissionGroup) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveGroupLocked(group)
}

func (s *Store) saveGroupLocked(group domain.PermissionGroup) error {
	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("permission group %s: %w: record already exists", group.ID, apperrors.ErrDuplicate)
	}
	if _, exists := s.groupByNameLocked(group.Name); exists {
		return fmt.Errorf("%w: permission group name %q", apperrors.ErrDuplicate, group.Name)
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *Store) UpdateGroup(ctx context.Context, group domain.PermissionGroup) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.groups[group.ID]
	if !ok {
		return notFound("permission group", group.ID)
	}
	if other, exists := s.groupByNameLocked(group.Name); exists && other.ID != group.ID {
		return fmt.Errorf("%w: permission group name %q", apperrors.ErrDuplicate, group.Name)
	}
	group.CreatedAt = current.CreatedAt
	group.CreatedBy = current.CreatedBy
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return notFound("permission group", groupID)
	}
	for _, p := range s.principals {
		if p.PermissionGroupID == groupID {
			return apperrors.Validationf("permission group is still assigned")
		}
	}
	delete(s.groups, groupID)
	return nil
}

// --- principals ---

func (s *Store) FindPrincipalByID(ctx context.Context, principalID string) (*domain.Principal, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[principalID]
	if !ok {
		return nil, notFound("principal", principalID)
	}
	return &p, nil
}

func (s *Store) FindPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.principalByEmailLocked(email); ok {
		return &p, nil
	}
	return nil, fmt.Errorf("principal: %w", apperrors.ErrNotFound)
}

func (s *Store) principalByEmailLocked(email string) (domain.Principal, bool) {
	email = domain.NormalizeEmail(email)
	for _, p := range s.principals {
		if domain.NormalizeEmail(p.Email) == email {
			return p, true
		}
	}
	return domain.Principal{}, false
}

func (s *Store) ListPrincipals(ctx context.Context, limit int, offset int) ([]domain.Principal, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	all := make([]domain.Principal, 0, len(s.principals))
	for _, p := range s.principals {
		all = append(all, p)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return []domain.Principal{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (s *Store) CountPrincipals(ctx context.Context) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.principals), nil
}

func (s *Store) CountPrincipalsByGroup(ctx context.Context, groupID string) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.principals {
		if p.PermissionGroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (s *Store) SavePrincipal(ctx context.Context, principal domain.Principal) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePrincipalLocked(principal)
}

func (s *Store) savePrincipalLocked(principal domain.Principal) error {
	if _, exists := s.principals[principal.ID]; exists {
		return fmt.Errorf("principal %s: %w: record already exists", principal.ID, apperrors.ErrDuplicate)
	}
	if _, exists := s.principalByEmailLocked(principal.Email); exists {
		return fmt.Errorf("%w: principal email", apperrors.ErrDuplicate)
	}
	if _, ok := s.groups[principal.PermissionGroupID]; !ok {
		return apperrors.Validationf("permission group does not exist")
	}
	s.principals[principal.ID] = principal
	return nil
}

func (s *Store) UpdatePrincipal(ctx context.Context, principal domain.Principal) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.principals[principal.ID]
	if !ok {
		return notFound("principal", principal.ID)
	}
	if _, ok := s.groups[principal.PermissionGroupID]; !ok {
		return apperrors.Validationf("permission group does not exist")
	}
	// email, identity and creation audit are immutable
	principal.Email = current.Email
	principal.IdentityID = current.IdentityID
	principal.CreatedAt = current.CreatedAt
	principal.CreatedBy = current.CreatedBy
	s.principals[principal.ID] = principal
	return nil
}

// --- credentials ---

func (s *Store) SaveCredential(ctx context.Context, credential domain.Credential) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.credentials {
		if c.Email == domain.NormalizeEmail(credential.Email) {
			return fmt.Errorf("%w: credential email", apperrors.ErrDuplicate)
		}
	}
	s.credentials[credential.ID] = credential
	return nil
}

func (s *Store) FindCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	for _, c := range s.credentials {
		if domain.NormalizeEmail(c.Email) == email {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("credential: %w", apperrors.ErrNotFound)
}

func (s *Store) DeleteCredential(ctx context.Context, credentialID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[credentialID]; !ok {
		return notFound("credential", credentialID)
	}
	delete(s.credentials, credentialID)
	return nil
}

// --- system state ---

func (s *Store) FindSystemState(ctx context.Context) (*domain.SystemState, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	return &state, nil
}

// InitializeSystem checks and claims the sentinel under the write lock, so at
// most one caller ever succeeds.
func (s *Store) InitializeSystem(ctx context.Context, group domain.PermissionGroup, principal domain.Principal) (*domain.PermissionGroup, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Initialized {
		return nil, apperrors.ErrAlreadyInitialized
	}

	stored := group.Clone()
	if existing, ok := s.groupByNameLocked(group.Name); ok {
		existing.IsAdmin = true
		s.groups[existing.ID] = existing
		stored = existing.Clone()
	} else if err := s.saveGroupLocked(group); err != nil {
		return nil, err
	}

	principal.PermissionGroupID = stored.ID
	if err := s.savePrincipalLocked(principal); err != nil {
		if stored.ID == group.ID {
			delete(s.groups, group.ID)
		}
		return nil, err
	}
	s.state = domain.SystemState{
		Initialized:   true,
		InitializedAt: principal.CreatedAt,
		InitializedBy: principal.ID,
	}
	return &stored, nil
}

// --- ledger ---

func (s *Store) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	if _, exists := s.entries[entry.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("ledger entry %s: %w: record already exists", entry.ID, apperrors.ErrDuplicate)
	}
	s.entries[entry.ID] = entry.Clone()
	s.mu.Unlock()

	s.broker.Publish(ctx, domain.NewLedgerEvent(domain.EventEntryCreated, entry, entry.CreatedAt))
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	current, ok := s.entries[entry.ID]
	if !ok || current.Status == domain.StatusRemoved {
		s.mu.Unlock()
		return notFound("ledger entry", entry.ID)
	}
	entry.Kind = current.Kind
	entry.Status = current.Status
	entry.CreatedAt = current.CreatedAt
	entry.CreatedBy = current.CreatedBy
	s.entries[entry.ID] = entry.Clone()
	s.mu.Unlock()

	s.broker.Publish(ctx, domain.NewLedgerEvent(domain.EventEntryUpdated, entry, entry.LastUpdatedAt))
	return nil
}

func (s *Store) MarkEntryRemoved(ctx context.Context, entryID string, removedAt time.Time, removedBy string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	entry, ok := s.entries[entryID]
	if !ok || entry.Status == domain.StatusRemoved {
		s.mu.Unlock()
		return notFound("ledger entry", entryID)
	}
	entry.Status = domain.StatusRemoved
	entry.Touch(removedBy, removedAt)
	s.entries[entryID] = entry
	s.mu.Unlock()

	s.broker.Publish(ctx, domain.NewLedgerEvent(domain.EventEntryRemoved, entry, removedAt))
	return nil
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return nil, notFound("ledger entry", entryID)
	}
	entry = entry.Clone()
	return &entry, nil
}

// ListEntries orders by (entry date, created at, id) descending, like the Postgres adapter.
func (s *Store) ListEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, *string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var cursor *pagination.Cursor
	if filter.NextToken != nil && *filter.NextToken != "" {
		c, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.Validationf("invalid nextToken")
		}
		cursor = &c
	}

	s.mu.RLock()
	matched := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if !filter.Matches(e) {
			continue
		}
		if cursor != nil && !cursor.Before(e.EntryDate, e.CreatedAt, e.ID) {
			continue
		}
		matched = append(matched, e.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	var nextToken *string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.ID})
		nextToken = &token
	}
	return matched, nextToken, nil
}

func (s *Store) FindEntriesByEntryDate(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	filter := domain.LedgerFilter{From: &from, To: &to}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if filter.Matches(e) {
			entries = append(entries, e.Clone())
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EntryDate.Before(entries[j].EntryDate) })
	return entries, nil
}

func (s *Store) SubscribeEntries(ctx context.Context, filter domain.LedgerFilter) (<-chan domain.LedgerEvent, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	return s.broker.Subscribe(ctx, filter), nil
}

// --- exchange rates ---

func (s *Store) AppendRate(ctx context.Context, rate domain.ExchangeRate) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, rate)
	return nil
}

func (s *Store) FindLatestRate(ctx context.Context) (*domain.ExchangeRate, error) {
	rates, err := s.ListRecentRates(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("exchange rate: %w", apperrors.ErrNotFound)
	}
	return &rates[0], nil
}

func (s *Store) ListRecentRates(ctx context.Context, limit int) ([]domain.ExchangeRate, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExchangeRate, 0, len(s.rates))
	// newest insertion first so equal timestamps keep the latest write on top
	for i := len(s.rates) - 1; i >= 0; i-- {
		out = append(out, s.rates[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
