package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"refchain/internal/notify"
	"refchain/internal/platform/tracer"
	"refchain/internal/reference/metrics"
	"refchain/internal/reference/models"
	"refchain/internal/sentinel"
	tenantmodels "refchain/internal/tenant/models"
	dErrors "refchain/pkg/domain-errors"
	"refchain/pkg/secrets"
)

// genericNotFound is the single message for bad, expired, and already
// resolved tokens. Providers are unauthenticated, so the response must not
// reveal which condition failed.
const genericNotFound = "reference request not found or expired"

// Store defines the persistence interface for reference requests.
// Error Contract:
// - Find methods return sentinel.ErrNotFound when no matching record exists
// - FindActionableByToken only matches pending, unexpired records
// - MarkCompleted/MarkDeclined are atomic transition-if-still-pending
//   operations and return sentinel.ErrNotFound when no pending row matched
type Store interface {
	Create(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id string) (*models.Record, error)
	FindActionableByToken(ctx context.Context, token string, now time.Time) (*models.Record, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*models.Record, error)
	Update(ctx context.Context, record *models.Record) error
	UpdateAttemptDelivery(ctx context.Context, id string, attemptNumber int, status models.DeliveryStatus, details string) error
	MarkCompleted(ctx context.Context, token string, now time.Time, rating int, feedback string, details *models.Details) (*models.Record, error)
	MarkDeclined(ctx context.Context, token string, now time.Time, reason models.DeclineReason, comment string) (*models.Record, error)
}

// Directory resolves tenant IDs against the external tenant profile service.
type Directory interface {
	FindByID(ctx context.Context, tenantID string) (*tenantmodels.Tenant, error)
}

const (
	defaultReferenceTTL    = 14 * 24 * time.Hour
	defaultResendCooldown  = time.Hour
	defaultMaxSendAttempts = 3
)

type Option func(*Service)

// Service is the reference request lifecycle manager. Terminal states are
// completed and declined; pending additionally carries a derived expired
// predicate checked on every token lookup.
type Service struct {
	store     Store
	directory Directory
	notifier  notify.Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer

	referenceTTL    time.Duration
	resendCooldown  time.Duration
	maxSendAttempts int
}

func NewService(store Store, directory Directory, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:           store,
		directory:       directory,
		notifier:        notifier,
		logger:          logger,
		tracer:          tracer.NewNoop(),
		referenceTTL:    defaultReferenceTTL,
		resendCooldown:  defaultResendCooldown,
		maxSendAttempts: defaultMaxSendAttempts,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for lifecycle spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithReferenceTTL configures how long a request stays actionable.
func WithReferenceTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.referenceTTL = ttl
		}
	}
}

// WithResendCooldown configures the minimum spacing between send attempts.
func WithResendCooldown(cooldown time.Duration) Option {
	return func(s *Service) {
		if cooldown > 0 {
			s.resendCooldown = cooldown
		}
	}
}

// WithMaxSendAttempts configures the total send cap, original send included.
func WithMaxSendAttempts(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxSendAttempts = max
		}
	}
}

// RequestReference creates a pending reference request, generates its secret
// token, and asks the gateway to deliver it to the provider. Delivery is
// best-effort: a failed send is recorded on attempt #1 but never fails the
// creation.
func (s *Service) RequestReference(ctx context.Context, tenantID string, referenceType models.Type, provider models.Provider) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "reference.request",
		tracer.String("tenant_id", tenantID),
		tracer.String("reference_type", string(referenceType)),
	)
	var err error
	defer func() { span.End(err) }()

	if !referenceType.IsValid() {
		err = dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid reference type: %s", referenceType))
		return nil, err
	}

	tenant, err := s.directory.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "tenant not found")
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tenant")
		return nil, err
	}

	token, err := secrets.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &models.Record{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Type:      referenceType,
		Provider:  provider,
		Token:     token,
		Status:    models.StatusPending,
		ExpiresAt: now.Add(s.referenceTTL),
		CreatedAt: now,
		Attempts: []models.Attempt{{
			Number:         1,
			SentAt:         now,
			DeliveryStatus: models.DeliverySent,
		}},
	}

	if err = s.store.Create(ctx, record); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to save reference request")
		return nil, err
	}

	delivered := s.notifier.Send(ctx, notify.Message{
		Kind:           notify.KindReferenceRequest,
		RecipientName:  provider.Name,
		RecipientEmail: provider.Email,
		TenantName:     tenant.FullName(),
		ReferenceType:  string(referenceType),
		Token:          token,
		ExpiresAt:      record.ExpiresAt,
	})
	s.recordDelivery(ctx, record, 1, delivered)

	s.logger.InfoContext(ctx, "reference request created",
		"tenant_id", tenantID,
		"reference_id", record.ID,
		"reference_type", referenceType,
		"delivered", delivered,
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(referenceType))
	}
	return record, nil
}

// ResendResult reports the outcome of a reminder send.
type ResendResult struct {
	Reference         *models.Record
	EmailSent         bool
	AttemptNumber     int
	RemainingAttempts int
}

// ResendReference dispatches a reminder for a still-pending request. At most
// maxSendAttempts sends total (original included), spaced at least
// resendCooldown apart. The rate-limit check is read-then-write: acceptable
// for human-paced resend clicks, documented as best-effort.
func (s *Service) ResendReference(ctx context.Context, referenceID string) (*ResendResult, error) {
	ctx, span := s.tracer.Start(ctx, "reference.resend",
		tracer.String("reference_id", referenceID),
	)
	var err error
	defer func() { span.End(err) }()

	record, err := s.store.FindByID(ctx, referenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "reference request not found")
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reference request")
		return nil, err
	}

	now := time.Now()
	if record.Status != models.StatusPending {
		err = dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("reference request already %s", record.Status))
		return nil, err
	}
	if record.IsExpired(now) {
		err = dErrors.New(dErrors.CodeExpired, "reference request expired")
		return nil, err
	}
	if len(record.Attempts) >= s.maxSendAttempts {
		if s.metrics != nil {
			s.metrics.IncrementResend("attempt_cap")
		}
		err = dErrors.New(dErrors.CodeRateLimited, "maximum send attempts reached")
		return nil, err
	}
	// Cooldown counts from the previous reminder, not the original send, so
	// the first resend is always allowed under the attempt cap.
	if record.LastReminderSent != nil && now.Sub(*record.LastReminderSent) < s.resendCooldown {
		if s.metrics != nil {
			s.metrics.IncrementResend("cooldown")
		}
		err = dErrors.New(dErrors.CodeRateLimited, "please wait before resending this request")
		return nil, err
	}

	tenantName := ""
	if tenant, dirErr := s.directory.FindByID(ctx, record.TenantID); dirErr == nil {
		tenantName = tenant.FullName()
	} else {
		s.logger.WarnContext(ctx, "could not resolve tenant for reminder",
			"tenant_id", record.TenantID,
			"error", dirErr,
		)
	}

	daysUntilExpiry := int(record.ExpiresAt.Sub(now).Hours() / 24)
	delivered := s.notifier.Send(ctx, notify.Message{
		Kind:            notify.KindReferenceReminder,
		RecipientName:   record.Provider.Name,
		RecipientEmail:  record.Provider.Email,
		TenantName:      tenantName,
		ReferenceType:   string(record.Type),
		Token:           record.Token,
		ExpiresAt:       record.ExpiresAt,
		DaysUntilExpiry: daysUntilExpiry,
	})

	status := models.DeliveryDelivered
	if !delivered {
		status = models.DeliveryFailed
		if s.metrics != nil {
			s.metrics.IncrementDeliveryFailure()
		}
	}
	attempt := models.Attempt{
		Number:         len(record.Attempts) + 1,
		SentAt:         now,
		DeliveryStatus: status,
	}
	record.Attempts = append(record.Attempts, attempt)
	record.ReminderCount++
	record.LastReminderSent = &now

	if err = s.store.Update(ctx, record); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to record resend")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementResend("sent")
	}
	s.logger.InfoContext(ctx, "reference reminder sent",
		"reference_id", record.ID,
		"attempt", attempt.Number,
		"delivered", delivered,
	)
	return &ResendResult{
		Reference:         record,
		EmailSent:         delivered,
		AttemptNumber:     attempt.Number,
		RemainingAttempts: s.maxSendAttempts - len(record.Attempts),
	}, nil
}

// DeclineReference resolves a pending request as declined. The token-plus-
// status-plus-expiry guard lives in the store's atomic transition; every
// failure mode surfaces as the same generic not-found.
func (s *Service) DeclineReference(ctx context.Context, token string, reason models.DeclineReason, comment string) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "reference.decline")
	var err error
	defer func() { span.End(err) }()

	if !reason.IsValid() {
		err = dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid decline reason: %s", reason))
		return nil, err
	}

	record, err := s.store.MarkDeclined(ctx, token, time.Now(), reason, comment)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, genericNotFound)
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to decline reference request")
		return nil, err
	}

	s.notifyTenant(ctx, record, notify.Message{
		Kind:          notify.KindReferenceDeclined,
		ReferenceType: string(record.Type),
		DeclineReason: string(reason),
	})

	s.logger.InfoContext(ctx, "reference declined",
		"reference_id", record.ID,
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.IncrementDeclined(string(reason))
	}
	return record, nil
}

// RespondReference resolves a pending request as completed. The submitted
// details are validated against the category implied by the stored reference
// type; fields from other categories are discarded before storage.
func (s *Service) RespondReference(ctx context.Context, token string, feedback string, rating int, input models.DetailsInput) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "reference.respond")
	var err error
	defer func() { span.End(err) }()

	if rating < 1 || rating > 5 {
		err = dErrors.New(dErrors.CodeValidation, "rating must be between 1 and 5")
		return nil, err
	}

	now := time.Now()
	record, err := s.store.FindActionableByToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, genericNotFound)
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reference request")
		return nil, err
	}

	details, err := models.BuildDetails(record.Type, input)
	if err != nil {
		return nil, err
	}

	// The transition re-checks pending+unexpired, so a caller racing us here
	// loses cleanly with the same generic not-found.
	resolved, err := s.store.MarkCompleted(ctx, token, now, rating, feedback, details)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, genericNotFound)
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete reference request")
		return nil, err
	}

	s.notifyTenant(ctx, resolved, notify.Message{
		Kind:          notify.KindReferenceCompleted,
		ReferenceType: string(resolved.Type),
		Rating:        rating,
		Feedback:      feedback,
	})

	s.logger.InfoContext(ctx, "reference completed",
		"reference_id", resolved.ID,
		"reference_type", resolved.Type,
		"rating", rating,
	)
	if s.metrics != nil {
		s.metrics.IncrementCompleted(string(resolved.Type))
	}
	return resolved, nil
}

// TokenView is the provider-facing projection of a still-actionable request.
type TokenView struct {
	Reference  *models.Record
	TenantName string
}

// GetByToken returns the provider-facing view of a still-actionable request.
// The same compound guard applies: anything not pending and unexpired is a
// generic not-found.
func (s *Service) GetByToken(ctx context.Context, token string) (*TokenView, error) {
	record, err := s.store.FindActionableByToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, genericNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reference request")
	}
	view := &TokenView{Reference: record}
	if tenant, dirErr := s.directory.FindByID(ctx, record.TenantID); dirErr == nil {
		view.TenantName = tenant.FullName()
	}
	return view, nil
}

// ListForTenant returns all reference requests for the tenant.
func (s *Service) ListForTenant(ctx context.Context, tenantID string) ([]*models.Record, error) {
	records, err := s.store.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reference requests")
	}
	return records, nil
}

// recordDelivery writes the gateway's report back onto the attempt. Failures
// here are logged only: the request itself has already been created.
func (s *Service) recordDelivery(ctx context.Context, record *models.Record, attemptNumber int, delivered bool) {
	status := models.DeliveryDelivered
	if !delivered {
		status = models.DeliveryFailed
		if s.metrics != nil {
			s.metrics.IncrementDeliveryFailure()
		}
	}
	if err := s.store.UpdateAttemptDelivery(ctx, record.ID, attemptNumber, status, ""); err != nil {
		s.logger.ErrorContext(ctx, "failed to record delivery status",
			"reference_id", record.ID,
			"attempt", attemptNumber,
			"error", err,
		)
		return
	}
	for i := range record.Attempts {
		if record.Attempts[i].Number == attemptNumber {
			record.Attempts[i].DeliveryStatus = status
		}
	}
}

// notifyTenant sends a best-effort status message to the tenant who owns the
// reference. Directory or gateway failures are logged and swallowed.
func (s *Service) notifyTenant(ctx context.Context, record *models.Record, msg notify.Message) {
	tenant, err := s.directory.FindByID(ctx, record.TenantID)
	if err != nil {
		s.logger.WarnContext(ctx, "could not resolve tenant for notification",
			"tenant_id", record.TenantID,
			"kind", msg.Kind,
			"error", err,
		)
		return
	}
	msg.RecipientName = tenant.FullName()
	msg.RecipientEmail = tenant.PersonalInfo.Email
	msg.TenantName = tenant.FullName()
	if !s.notifier.Send(ctx, msg) {
		if s.metrics != nil {
			s.metrics.IncrementDeliveryFailure()
		}
		s.logger.WarnContext(ctx, "tenant notification failed",
			"tenant_id", record.TenantID,
			"kind", msg.Kind,
		)
	}
}
