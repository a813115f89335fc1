package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refchain/internal/reference/models"
	"refchain/internal/sentinel"
	"refchain/pkg/testutil"
)

func pendingReference(id, token string, expiresAt time.Time) *models.Record {
	return &models.Record{
		ID:       id,
		TenantID: "t1",
		Type:     models.TypePreviousLandlord,
		Provider: models.Provider{
			Name:         "Joseph Mwangi",
			Email:        "landlord@example.com",
			Relationship: "previous landlord",
		},
		Token:     token,
		Status:    models.StatusPending,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
		Attempts: []models.Attempt{{
			Number:         1,
			SentAt:         time.Now(),
			DeliveryStatus: models.DeliverySent,
		}},
	}
}

func landlordDetails() *models.Details {
	return &models.Details{
		Category: models.CategoryLandlord,
		Landlord: &models.LandlordDetails{
			TenancyDuration:     "2 years",
			RentPaymentHistory:  "always on time",
			WaterBillsPaid:      true,
			ElectricalBillsPaid: true,
		},
	}
}

func TestCreate_DuplicateToken(t *testing.T) {
	s := New()
	ctx := context.Background()
	expiry := time.Now().Add(14 * 24 * time.Hour)

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", expiry)))
	err := s.Create(ctx, pendingReference("r2", "tok", expiry))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestFindActionableByToken_Guard(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "live", now.Add(time.Hour))))
	require.NoError(t, s.Create(ctx, pendingReference("r2", "stale", now.Add(-time.Minute))))

	t.Run("pending and unexpired is returned", func(t *testing.T) {
		record, err := s.FindActionableByToken(ctx, "live", now)
		require.NoError(t, err)
		assert.Equal(t, "r1", record.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := s.FindActionableByToken(ctx, "nope", now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := s.FindActionableByToken(ctx, "stale", now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("resolved token", func(t *testing.T) {
		_, err := s.MarkDeclined(ctx, "live", now, models.DeclineNotAcquainted, "")
		require.NoError(t, err)
		_, err = s.FindActionableByToken(ctx, "live", now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestMarkCompleted_SetsResolutionFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", now.Add(time.Hour))))

	record, err := s.MarkCompleted(ctx, "tok", now, 5, "excellent tenant", landlordDetails())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, record.Status)
	assert.Equal(t, 5, record.Rating)
	assert.Equal(t, "excellent tenant", record.Feedback)
	require.NotNil(t, record.CompletedAt)
	require.NotNil(t, record.Details)
	assert.Equal(t, models.CategoryLandlord, record.Details.Category)
}

func TestMarkCompleted_ExpiredRecord(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", now.Add(-time.Minute))))

	_, err := s.MarkCompleted(ctx, "tok", now, 5, "late", landlordDetails())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// TestMarkCompleted_RaceOneWinner verifies two concurrent resolvers of the
// same token cannot both succeed.
func TestMarkCompleted_RaceOneWinner(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", now.Add(time.Hour))))

	const callers = 20
	result := testutil.RunConcurrent(callers, func(int) error {
		_, err := s.MarkCompleted(ctx, "tok", now, 4, "ok", landlordDetails())
		return err
	})

	assert.Equal(t, int32(1), result.Successes, "exactly one resolver may win")
	assert.Equal(t, int32(callers-1), result.NotFounds, "losers get the uniform not-found")
}

func TestMarkDeclined_ThenComplete(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", now.Add(time.Hour))))

	declined, err := s.MarkDeclined(ctx, "tok", now, models.DeclineConflictOfInterest, "related to tenant")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, declined.Status)
	require.NotNil(t, declined.DeclinedAt)

	_, err = s.MarkCompleted(ctx, "tok", now, 5, "", landlordDetails())
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "declined requests must not be completable")
}

func TestListCompletedByTenant_FiltersStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "a", now.Add(time.Hour))))
	require.NoError(t, s.Create(ctx, pendingReference("r2", "b", now.Add(time.Hour))))
	_, err := s.MarkCompleted(ctx, "a", now, 5, "", landlordDetails())
	require.NoError(t, err)

	completed, err := s.ListCompletedByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "r1", completed[0].ID)

	all, err := s.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdate_OnlyTouchesAttemptFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", now.Add(time.Hour))))

	record, err := s.FindByID(ctx, "r1")
	require.NoError(t, err)
	record.Attempts = append(record.Attempts, models.Attempt{
		Number:         2,
		SentAt:         now,
		DeliveryStatus: models.DeliveryDelivered,
	})
	record.ReminderCount = 1
	record.LastReminderSent = &now
	// Resolution fields set by the caller must be ignored.
	record.Rating = 5

	require.NoError(t, s.Update(ctx, record))

	stored, err := s.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, stored.Attempts, 2)
	assert.Equal(t, 1, stored.ReminderCount)
	assert.Zero(t, stored.Rating)
}

func TestUpdateAttemptDelivery(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, pendingReference("r1", "tok", now.Add(time.Hour))))
	require.NoError(t, s.UpdateAttemptDelivery(ctx, "r1", 1, models.DeliveryFailed, "mailbox full"))

	stored, err := s.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryFailed, stored.Attempts[0].DeliveryStatus)
	assert.Equal(t, "mailbox full", stored.Attempts[0].DeliveryDetails)

	err = s.UpdateAttemptDelivery(ctx, "r1", 9, models.DeliveryDelivered, "")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
