package verification

// Unit tests for the scoring engine, run against the real in-memory reference
// and tenant stores. The weight table itself is covered in weights_test.go.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"refchain/internal/notify"
	refmodels "refchain/internal/reference/models"
	refstore "refchain/internal/reference/store"
	tenantmodels "refchain/internal/tenant/models"
	tenantstore "refchain/internal/tenant/store"
	dErrors "refchain/pkg/domain-errors"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *captureNotifier) Send(_ context.Context, msg notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

func (n *captureNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Message, len(n.sent))
	copy(out, n.sent)
	return out
}

type ScoringSuite struct {
	suite.Suite
	references *refstore.InMemoryStore
	tenants    *tenantstore.InMemoryStore
	notifier   *captureNotifier
	service    *Service
	seq        int
}

func (s *ScoringSuite) SetupTest() {
	s.references = refstore.New()
	s.tenants = tenantstore.New()
	s.notifier = &captureNotifier{}
	s.seq = 0
	s.service = NewService(s.references, s.tenants, s.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(s.T(), s.tenants.Save(context.Background(), &tenantmodels.Tenant{
		ID: "tenant-1",
		PersonalInfo: tenantmodels.PersonalInfo{
			FirstName: "Amina",
			LastName:  "Odhiambo",
			Email:     "amina@example.com",
		},
	}))
}

func TestScoringSuite(t *testing.T) {
	suite.Run(t, new(ScoringSuite))
}

// addCompleted seeds one completed reference for tenant-1.
func (s *ScoringSuite) addCompleted(refType refmodels.Type, rating int, details *refmodels.Details) {
	s.seq++
	now := time.Now()
	record := &refmodels.Record{
		ID:        fmt.Sprintf("ref-%d", s.seq),
		TenantID:  "tenant-1",
		Type:      refType,
		Token:     fmt.Sprintf("token-%d", s.seq),
		Status:    refmodels.StatusPending,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(s.T(), s.references.Create(context.Background(), record))
	_, err := s.references.MarkCompleted(context.Background(), record.Token, now, rating, "ok", details)
	require.NoError(s.T(), err)
}

func bonusLandlordDetails() *refmodels.Details {
	return &refmodels.Details{
		Category: refmodels.CategoryLandlord,
		Landlord: &refmodels.LandlordDetails{
			TenancyDuration:     "2 years",
			RentPaymentHistory:  "always on time",
			WaterBillsPaid:      true,
			ElectricalBillsPaid: true,
		},
	}
}

func (s *ScoringSuite) TestVerifyTenant_NoCompletedReferences() {
	_, err := s.service.VerifyTenant(context.Background(), "tenant-1")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.EqualError(s.T(), err, "no completed references")
}

func (s *ScoringSuite) TestVerifyTenant_UnknownTenant() {
	_, err := s.service.VerifyTenant(context.Background(), "ghost")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ScoringSuite) TestVerifyTenant_SingleBonusLandlord() {
	s.addCompleted(refmodels.TypePreviousLandlord, 5, bonusLandlordDetails())

	result, err := s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)

	assert.InDelta(s.T(), 24.0, result.VerificationScore, 1e-9)
	assert.InDelta(s.T(), 24.0, result.TotalPossibleScore, 1e-9)
	assert.Equal(s.T(), 100, result.Percentage)
	assert.True(s.T(), result.IsVerified)
	assert.True(s.T(), result.NewlyVerified)
	require.Len(s.T(), result.References, 1)
	assert.True(s.T(), result.References[0].BonusApplied)

	tenant, err := s.tenants.FindByID(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 100, tenant.VerificationProgress)
	assert.True(s.T(), tenant.IsVerified)

	messages := s.notifier.messages()
	require.Len(s.T(), messages, 1)
	assert.Equal(s.T(), notify.KindVerificationStatus, messages[0].Kind)
	assert.True(s.T(), messages[0].NewlyVerified)
	assert.Equal(s.T(), 100, messages[0].Percentage)
}

func (s *ScoringSuite) TestVerifyTenant_MixedReferences() {
	s.addCompleted(refmodels.TypePreviousLandlord, 5, bonusLandlordDetails())
	s.addCompleted(refmodels.TypeCharacter, 3, &refmodels.Details{
		Category:  refmodels.CategoryCharacter,
		Character: &refmodels.CharacterDetails{KnownDuration: "3 years", CommunityStanding: "good"},
	})

	result, err := s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)

	// landlord: 5 x 4.0 x 1.2 = 24 of 24; character: 3 x 1.2 = 3.6 of 6.
	assert.InDelta(s.T(), 27.6, result.VerificationScore, 1e-9)
	assert.InDelta(s.T(), 30.0, result.TotalPossibleScore, 1e-9)
	assert.Equal(s.T(), 92, result.Percentage)
	assert.True(s.T(), result.IsVerified)
}

func (s *ScoringSuite) TestScore_OrderIndependent() {
	records := []*refmodels.Record{
		completedWith(refmodels.TypePreviousLandlord, bonusLandlordDetails()),
		completedWith(refmodels.TypeCharacter, nil),
		completedWith(refmodels.TypeEmployer, nil),
	}
	records[1].Rating = 3
	records[2].Rating = 4

	forward := score("tenant-1", records)
	reversed := score("tenant-1", []*refmodels.Record{records[2], records[1], records[0]})
	require.NotNil(s.T(), forward)
	require.NotNil(s.T(), reversed)
	assert.Equal(s.T(), forward.Percentage, reversed.Percentage)
	assert.InDelta(s.T(), forward.VerificationScore, reversed.VerificationScore, 1e-9)
}

func (s *ScoringSuite) TestVerifyTenant_VerifiedIsMonotonic() {
	s.addCompleted(refmodels.TypePreviousLandlord, 5, bonusLandlordDetails())
	result, err := s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	require.True(s.T(), result.IsVerified)

	// A flood of poor references drags the percentage below the threshold,
	// but the verified flag must not regress.
	for i := 0; i < 4; i++ {
		s.addCompleted(refmodels.TypeCharacter, 1, &refmodels.Details{
			Category:  refmodels.CategoryCharacter,
			Character: &refmodels.CharacterDetails{KnownDuration: "1 year", CommunityStanding: "poor"},
		})
	}

	result, err = s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.Less(s.T(), result.Percentage, 70)
	assert.True(s.T(), result.IsVerified, "verified status is monotonic")
	assert.False(s.T(), result.NewlyVerified)

	tenant, err := s.tenants.FindByID(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), tenant.IsVerified)
}

func (s *ScoringSuite) TestVerifyTenant_NotificationPolicy() {
	// 3/5 on a character reference: 60%, below threshold, first computation
	// jumps from 0 so a progress notification goes out.
	s.addCompleted(refmodels.TypeCharacter, 3, nil)
	_, err := s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.Len(s.T(), s.notifier.messages(), 1)

	// Recomputing with no change must stay quiet.
	_, err = s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.Len(s.T(), s.notifier.messages(), 1, "a <10 point change must not notify")
}

func (s *ScoringSuite) TestVerifyTenant_IgnoresUnratedAndPending() {
	s.addCompleted(refmodels.TypeEmployer, 4, &refmodels.Details{
		Category:   refmodels.CategoryEmployment,
		Employment: &refmodels.EmploymentDetails{Position: "Clerk", EmploymentDuration: "1 year"},
	})
	pending := &refmodels.Record{
		ID:        "ref-pending",
		TenantID:  "tenant-1",
		Type:      refmodels.TypeCharacter,
		Token:     "token-pending",
		Status:    refmodels.StatusPending,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(s.T(), s.references.Create(context.Background(), pending))

	result, err := s.service.VerifyTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.Len(s.T(), result.References, 1, "pending references must not contribute")
}
