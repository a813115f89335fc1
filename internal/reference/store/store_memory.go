package store

import (
	"context"
	"sync"
	"time"

	"refchain/internal/reference/models"
	"refchain/internal/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - MarkCompleted/MarkDeclined return sentinel.ErrNotFound when no pending,
//   unexpired record matches the token; a lost resolve race is therefore
//   indistinguishable from a bad token, which is what the token guard wants
// - Return nil for successful operations

// InMemoryStore keeps reference requests in memory, indexed by ID and token.
type InMemoryStore struct {
	mu       sync.Mutex
	byID     map[string]*models.Record
	byToken  map[string]*models.Record
	byTenant map[string][]*models.Record
}

// New constructs an empty in-memory reference store.
func New() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[string]*models.Record),
		byToken:  make(map[string]*models.Record),
		byTenant: make(map[string][]*models.Record),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byToken[record.Token]; exists {
		return sentinel.ErrConflict
	}
	copyRecord := cloneRecord(record)
	s.byID[record.ID] = copyRecord
	s.byToken[record.Token] = copyRecord
	s.byTenant[record.TenantID] = append(s.byTenant[record.TenantID], copyRecord)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

// FindActionableByToken returns the record only when it is still pending and
// unexpired. Wrong token, resolved record, and expired record all yield the
// same ErrNotFound so callers cannot probe request state.
func (s *InMemoryStore) FindActionableByToken(_ context.Context, token string, now time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byToken[token]
	if !ok || record.Status != models.StatusPending || now.After(record.ExpiresAt) {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID string) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.byTenant[tenantID]
	out := make([]*models.Record, 0, len(records))
	for _, record := range records {
		out = append(out, cloneRecord(record))
	}
	return out, nil
}

func (s *InMemoryStore) ListCompletedByTenant(_ context.Context, tenantID string) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Record
	for _, record := range s.byTenant[tenantID] {
		if record.Status == models.StatusCompleted {
			out = append(out, cloneRecord(record))
		}
	}
	return out, nil
}

// Update replaces the stored attempt/reminder fields of a pending record.
// Resolution fields are owned by MarkCompleted/MarkDeclined and are not
// touched here.
func (s *InMemoryStore) Update(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[record.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Attempts = cloneAttempts(record.Attempts)
	stored.ReminderCount = record.ReminderCount
	stored.LastReminderSent = copyTime(record.LastReminderSent)
	return nil
}

// UpdateAttemptDelivery records the gateway's delivery report for one attempt.
func (s *InMemoryStore) UpdateAttemptDelivery(_ context.Context, id string, attemptNumber int, status models.DeliveryStatus, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	for i := range record.Attempts {
		if record.Attempts[i].Number == attemptNumber {
			record.Attempts[i].DeliveryStatus = status
			record.Attempts[i].DeliveryDetails = details
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// MarkCompleted atomically transitions a pending, unexpired record to
// completed. Exactly one of two racing resolvers can win; the loser observes
// ErrNotFound.
func (s *InMemoryStore) MarkCompleted(_ context.Context, token string, now time.Time, rating int, feedback string, details *models.Details) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byToken[token]
	if !ok || record.Status != models.StatusPending || now.After(record.ExpiresAt) {
		return nil, sentinel.ErrNotFound
	}
	completedAt := now
	record.Status = models.StatusCompleted
	record.Rating = rating
	record.Feedback = feedback
	record.Details = details
	record.CompletedAt = &completedAt
	return cloneRecord(record), nil
}

// MarkDeclined atomically transitions a pending, unexpired record to declined.
func (s *InMemoryStore) MarkDeclined(_ context.Context, token string, now time.Time, reason models.DeclineReason, comment string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byToken[token]
	if !ok || record.Status != models.StatusPending || now.After(record.ExpiresAt) {
		return nil, sentinel.ErrNotFound
	}
	declinedAt := now
	record.Status = models.StatusDeclined
	record.DeclineReason = reason
	record.DeclineComment = comment
	record.DeclinedAt = &declinedAt
	return cloneRecord(record), nil
}

func cloneRecord(record *models.Record) *models.Record {
	copyRecord := *record
	copyRecord.Attempts = cloneAttempts(record.Attempts)
	copyRecord.LastReminderSent = copyTime(record.LastReminderSent)
	copyRecord.CompletedAt = copyTime(record.CompletedAt)
	copyRecord.DeclinedAt = copyTime(record.DeclinedAt)
	if record.Details != nil {
		copyDetails := *record.Details
		copyRecord.Details = &copyDetails
	}
	return &copyRecord
}

func cloneAttempts(attempts []models.Attempt) []models.Attempt {
	out := make([]models.Attempt, len(attempts))
	copy(out, attempts)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copyT := *t
	return &copyT
}
