package service

// Unit tests for the reference lifecycle manager. They run against the real
// in-memory store with a fake directory and notifier, because most of the
// interesting behavior lives in the interplay between service guards and the
// store's atomic transitions.

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"refchain/internal/notify"
	"refchain/internal/reference/models"
	"refchain/internal/reference/store"
	"refchain/internal/sentinel"
	tenantmodels "refchain/internal/tenant/models"
	dErrors "refchain/pkg/domain-errors"
)

type fakeDirectory struct {
	tenants map[string]*tenantmodels.Tenant
}

func (d *fakeDirectory) FindByID(_ context.Context, tenantID string) (*tenantmodels.Tenant, error) {
	tenant, ok := d.tenants[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return tenant, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []notify.Message
	delivers bool
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.delivers
}

func (n *fakeNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Message, len(n.sent))
	copy(out, n.sent)
	return out
}

type LifecycleSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	notifier *fakeNotifier
	service  *Service
}

func (s *LifecycleSuite) SetupTest() {
	s.store = store.New()
	s.notifier = &fakeNotifier{delivers: true}
	directory := &fakeDirectory{tenants: map[string]*tenantmodels.Tenant{
		"tenant-1": {
			ID: "tenant-1",
			PersonalInfo: tenantmodels.PersonalInfo{
				FirstName: "Amina",
				LastName:  "Odhiambo",
				Email:     "amina@example.com",
			},
		},
	}}
	s.service = NewService(s.store, directory, s.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) provider() models.Provider {
	return models.Provider{
		Name:         "Joseph Mwangi",
		Email:        "landlord@example.com",
		Relationship: "previous landlord",
	}
}

func (s *LifecycleSuite) landlordInput() models.DetailsInput {
	return models.DetailsInput{
		TenancyDuration:     "2 years",
		RentPaymentHistory:  "always on time",
		WaterBillsPaid:      true,
		ElectricalBillsPaid: true,
	}
}

func (s *LifecycleSuite) TestRequestReference_CreatesPendingWithToken() {
	before := time.Now()
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypePreviousLandlord, s.provider())
	require.NoError(s.T(), err)

	assert.NotEmpty(s.T(), record.Token)
	assert.Equal(s.T(), models.StatusPending, record.Status)
	assert.WithinDuration(s.T(), before.Add(14*24*time.Hour), record.ExpiresAt, time.Minute)
	require.Len(s.T(), record.Attempts, 1)
	assert.Equal(s.T(), 1, record.Attempts[0].Number)
	assert.Equal(s.T(), models.DeliveryDelivered, record.Attempts[0].DeliveryStatus)

	messages := s.notifier.messages()
	require.Len(s.T(), messages, 1)
	assert.Equal(s.T(), notify.KindReferenceRequest, messages[0].Kind)
	assert.Equal(s.T(), record.Token, messages[0].Token)
	assert.Equal(s.T(), "Amina Odhiambo", messages[0].TenantName)
}

func (s *LifecycleSuite) TestRequestReference_UnknownTenant() {
	_, err := s.service.RequestReference(context.Background(), "ghost", models.TypeEmployer, s.provider())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LifecycleSuite) TestRequestReference_InvalidType() {
	_, err := s.service.RequestReference(context.Background(), "tenant-1", "astrologer", s.provider())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LifecycleSuite) TestRequestReference_DeliveryFailureStillCreates() {
	s.notifier.delivers = false

	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypeEmployer, s.provider())
	require.NoError(s.T(), err, "delivery failure must not fail creation")
	assert.Equal(s.T(), models.DeliveryFailed, record.Attempts[0].DeliveryStatus)

	stored, err := s.store.FindByID(context.Background(), record.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.DeliveryFailed, stored.Attempts[0].DeliveryStatus)
}

func (s *LifecycleSuite) TestRespondReference_CompletesAndNotifies() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypePreviousLandlord, s.provider())
	require.NoError(s.T(), err)

	resolved, err := s.service.RespondReference(context.Background(), record.Token, "excellent tenant", 5, s.landlordInput())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusCompleted, resolved.Status)
	assert.Equal(s.T(), 5, resolved.Rating)
	require.NotNil(s.T(), resolved.Details)
	require.NotNil(s.T(), resolved.Details.Landlord)
	assert.True(s.T(), resolved.Details.Landlord.WaterBillsPaid)

	messages := s.notifier.messages()
	require.Len(s.T(), messages, 2)
	assert.Equal(s.T(), notify.KindReferenceCompleted, messages[1].Kind)
	assert.Equal(s.T(), "amina@example.com", messages[1].RecipientEmail)
}

func (s *LifecycleSuite) TestRespondReference_DiscardsUnrelatedFields() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypePreviousLandlord, s.provider())
	require.NoError(s.T(), err)

	input := s.landlordInput()
	input.Position = "CFO"
	input.EmployerKRAPin = "A0123"

	resolved, err := s.service.RespondReference(context.Background(), record.Token, "fine", 4, input)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), resolved.Details.Employment, "employment fields must be discarded for a landlord reference")
}

func (s *LifecycleSuite) TestRespondReference_MissingCategoryFields() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypeEmployer, s.provider())
	require.NoError(s.T(), err)

	_, err = s.service.RespondReference(context.Background(), record.Token, "good", 4, models.DetailsInput{
		Position: "Accountant",
		// employmentDuration missing
	})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))

	// The validation failure must not have resolved the request.
	stored, err := s.store.FindByID(context.Background(), record.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusPending, stored.Status)
}

func (s *LifecycleSuite) TestRespondReference_RatingBounds() {
	_, err := s.service.RespondReference(context.Background(), "whatever", "x", 0, models.DetailsInput{})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = s.service.RespondReference(context.Background(), "whatever", "x", 6, models.DetailsInput{})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LifecycleSuite) TestTokenGuard_UniformNotFound() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypeCharacter, s.provider())
	require.NoError(s.T(), err)

	_, err = s.service.DeclineReference(context.Background(), record.Token, models.DeclineNotAcquainted, "")
	require.NoError(s.T(), err)

	cases := map[string]func() error{
		"respond after decline": func() error {
			_, err := s.service.RespondReference(context.Background(), record.Token, "x", 5, models.DetailsInput{
				KnownDuration:     "5 years",
				CommunityStanding: "good",
			})
			return err
		},
		"decline after decline": func() error {
			_, err := s.service.DeclineReference(context.Background(), record.Token, models.DeclineOther, "")
			return err
		},
		"view after decline": func() error {
			_, err := s.service.GetByToken(context.Background(), record.Token)
			return err
		},
		"bad token": func() error {
			_, err := s.service.GetByToken(context.Background(), "no-such-token")
			return err
		},
	}
	for name, call := range cases {
		err := call()
		require.Error(s.T(), err, name)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound), name)
		assert.EqualError(s.T(), err, "reference request not found or expired", name)
	}
}

func (s *LifecycleSuite) TestDeclineReference_InvalidReason() {
	_, err := s.service.DeclineReference(context.Background(), "tok", "because", "")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LifecycleSuite) TestResendReference_Lifecycle() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypeEmployer, s.provider())
	require.NoError(s.T(), err)

	result, err := s.service.ResendReference(context.Background(), record.ID)
	require.NoError(s.T(), err, "first resend is allowed right after creation")
	assert.Equal(s.T(), 2, result.AttemptNumber)
	assert.Equal(s.T(), 1, result.RemainingAttempts)
	assert.True(s.T(), result.EmailSent)
	assert.Equal(s.T(), 1, result.Reference.ReminderCount)

	messages := s.notifier.messages()
	require.Len(s.T(), messages, 2)
	assert.Equal(s.T(), notify.KindReferenceReminder, messages[1].Kind)
	assert.Equal(s.T(), 13, messages[1].DaysUntilExpiry)

	_, err = s.service.ResendReference(context.Background(), record.ID)
	require.Error(s.T(), err, "second resend within the hour must be rejected")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *LifecycleSuite) TestResendReference_AttemptCap() {
	svc := NewService(s.store, &fakeDirectory{tenants: map[string]*tenantmodels.Tenant{
		"tenant-1": {ID: "tenant-1"},
	}}, s.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithResendCooldown(time.Nanosecond),
	)

	record, err := svc.RequestReference(context.Background(), "tenant-1", models.TypeEmployer, s.provider())
	require.NoError(s.T(), err)

	_, err = svc.ResendReference(context.Background(), record.ID)
	require.NoError(s.T(), err)
	time.Sleep(time.Millisecond)
	result, err := svc.ResendReference(context.Background(), record.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, result.AttemptNumber)
	assert.Zero(s.T(), result.RemainingAttempts)

	time.Sleep(time.Millisecond)
	_, err = svc.ResendReference(context.Background(), record.ID)
	require.Error(s.T(), err, "a fourth send must never happen")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *LifecycleSuite) TestResendReference_NonPending() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypePreviousLandlord, s.provider())
	require.NoError(s.T(), err)
	_, err = s.service.RespondReference(context.Background(), record.Token, "great", 5, s.landlordInput())
	require.NoError(s.T(), err)

	_, err = s.service.ResendReference(context.Background(), record.ID)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *LifecycleSuite) TestResendReference_Expired() {
	expired := &models.Record{
		ID:        "r-exp",
		TenantID:  "tenant-1",
		Type:      models.TypeEmployer,
		Provider:  s.provider(),
		Token:     "expired-token",
		Status:    models.StatusPending,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-15 * 24 * time.Hour),
		Attempts:  []models.Attempt{{Number: 1, SentAt: time.Now().Add(-15 * 24 * time.Hour), DeliveryStatus: models.DeliverySent}},
	}
	require.NoError(s.T(), s.store.Create(context.Background(), expired))

	_, err := s.service.ResendReference(context.Background(), "r-exp")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeExpired))
}

func (s *LifecycleSuite) TestResendReference_NotFound() {
	_, err := s.service.ResendReference(context.Background(), "missing")
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LifecycleSuite) TestGetByToken_View() {
	record, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypeChamaMember, s.provider())
	require.NoError(s.T(), err)

	view, err := s.service.GetByToken(context.Background(), record.Token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Amina Odhiambo", view.TenantName)
	assert.Equal(s.T(), models.TypeChamaMember, view.Reference.Type)
}

func (s *LifecycleSuite) TestListForTenant() {
	_, err := s.service.RequestReference(context.Background(), "tenant-1", models.TypeEmployer, s.provider())
	require.NoError(s.T(), err)
	_, err = s.service.RequestReference(context.Background(), "tenant-1", models.TypeCharacter, s.provider())
	require.NoError(s.T(), err)

	records, err := s.service.ListForTenant(context.Background(), "tenant-1")
	require.NoError(s.T(), err)
	assert.Len(s.T(), records, 2)
}
