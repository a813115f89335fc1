package store

import (
	"context"
	"sync"

	"refchain/internal/sentinel"
	"refchain/internal/tenant/models"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps tenant records in memory for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*models.Tenant
}

// New constructs an empty in-memory tenant store.
func New() *InMemoryStore {
	return &InMemoryStore{tenants: make(map[string]*models.Tenant)}
}

func (s *InMemoryStore) Save(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyTenant := *tenant
	s.tenants[tenant.ID] = &copyTenant
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyTenant := *tenant
	return &copyTenant, nil
}

// UpdateVerificationState persists the scoring engine's output. The verified
// flag is only ever raised here; callers enforce monotonicity.
func (s *InMemoryStore) UpdateVerificationState(_ context.Context, tenantID string, progress int, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	tenant.VerificationProgress = progress
	tenant.IsVerified = verified
	return nil
}
