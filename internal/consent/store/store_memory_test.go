package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refchain/internal/consent/models"
	"refchain/internal/sentinel"
	"refchain/pkg/testutil"
)

func newConsent(tenantID, id string) *models.Record {
	return &models.Record{
		ID:            id,
		TenantID:      tenantID,
		RequesterID:   tenantID,
		Permissions:   models.Permissions{EmployerVerification: true},
		DataRetention: models.DefaultRetention(),
		Status:        models.StatusActive,
		CreatedAt:     time.Now(),
	}
}

func TestCreateSuperseding_FirstConsent(t *testing.T) {
	s := New()
	ctx := context.Background()

	revoked, err := s.CreateSuperseding(ctx, newConsent("t1", "c1"), time.Now())
	require.NoError(t, err)
	assert.Zero(t, revoked, "first consent must not report revocations")

	active, err := s.FindActiveByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "c1", active.ID)
}

func TestCreateSuperseding_RevokesPriorActive(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	_, err := s.CreateSuperseding(ctx, newConsent("t1", "c1"), now)
	require.NoError(t, err)

	revoked, err := s.CreateSuperseding(ctx, newConsent("t1", "c2"), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, revoked)

	active, err := s.FindActiveByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "c2", active.ID)

	all, err := s.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.StatusRevoked, all[0].Status)
	assert.Equal(t, models.RevokedReasonSuperseded, all[0].RevokedReason)
	require.NotNil(t, all[0].RevokedAt)
}

func TestCreateSuperseding_IsolatedPerTenant(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	_, err := s.CreateSuperseding(ctx, newConsent("t1", "c1"), now)
	require.NoError(t, err)
	revoked, err := s.CreateSuperseding(ctx, newConsent("t2", "c2"), now)
	require.NoError(t, err)
	assert.Zero(t, revoked, "consents of other tenants must be untouched")

	active, err := s.FindActiveByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, active.Status)
}

func TestFindActiveByTenant_NoneActive(t *testing.T) {
	s := New()
	_, err := s.FindActiveByTenant(context.Background(), "t1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// TestCreateSuperseding_ConcurrentSameTenant verifies the single-active
// invariant holds when many goroutines create consents for one tenant at once.
func TestCreateSuperseding_ConcurrentSameTenant(t *testing.T) {
	s := New()
	ctx := context.Background()

	const writers = 50
	result := testutil.RunConcurrent(writers, func(i int) error {
		_, err := s.CreateSuperseding(ctx, newConsent("t1", fmt.Sprintf("c%d", i)), time.Now())
		return err
	})
	assert.Equal(t, int32(writers), result.Successes)

	all, err := s.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, all, writers)

	active := 0
	for _, record := range all {
		if record.Status == models.StatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "exactly one consent may remain active")
}
