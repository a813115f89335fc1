package store

import (
	"context"
	"sync"
	"time"

	"refchain/internal/consent/models"
	"refchain/internal/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
//
// In-memory stores keep the initial implementation lightweight and testable.
// They intentionally favor clarity over performance.

// InMemoryStore stores consent records in memory.
type InMemoryStore struct {
	mu       sync.Mutex
	consents map[string][]*models.Record // keyed by tenant ID, newest last
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{consents: make(map[string][]*models.Record)}
}

// CreateSuperseding revokes every active consent for the tenant and inserts
// the new record in one critical section, preserving the single-active
// invariant under concurrent creation. Returns the number of consents revoked.
func (s *InMemoryStore) CreateSuperseding(_ context.Context, consent *models.Record, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for _, existing := range s.consents[consent.TenantID] {
		if existing.Status == models.StatusActive {
			revokedAt := now
			existing.Status = models.StatusRevoked
			existing.RevokedAt = &revokedAt
			existing.RevokedReason = models.RevokedReasonSuperseded
			revoked++
		}
	}

	copyRecord := *consent
	s.consents[consent.TenantID] = append(s.consents[consent.TenantID], &copyRecord)
	return revoked, nil
}

// FindActiveByTenant returns the tenant's single active consent.
func (s *InMemoryStore) FindActiveByTenant(_ context.Context, tenantID string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.consents[tenantID] {
		if record.Status == models.StatusActive {
			copyRecord := *record
			return &copyRecord, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListByTenant returns all consents for the tenant, newest last.
func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID string) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.consents[tenantID]
	out := make([]*models.Record, 0, len(records))
	for _, record := range records {
		copyRecord := *record
		out = append(out, &copyRecord)
	}
	return out, nil
}
