// Package verification turns a tenant's completed references into a single
// trust percentage and maintains the tenant's verified status. The rules are
// centralized here so weights and bonus conditions stay testable in one place.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"refchain/internal/notify"
	"refchain/internal/platform/tracer"
	refmodels "refchain/internal/reference/models"
	"refchain/internal/sentinel"
	tenantmodels "refchain/internal/tenant/models"
	"refchain/internal/verification/metrics"
	dErrors "refchain/pkg/domain-errors"
)

// References reads the completed reference requests used as scoring input.
type References interface {
	ListCompletedByTenant(ctx context.Context, tenantID string) ([]*refmodels.Record, error)
}

// Tenants reads and updates tenant verification state.
// Error Contract:
// - FindByID and UpdateVerificationState return sentinel.ErrNotFound when the
//   tenant does not exist
type Tenants interface {
	FindByID(ctx context.Context, tenantID string) (*tenantmodels.Tenant, error)
	UpdateVerificationState(ctx context.Context, tenantID string, progress int, verified bool) error
}

const (
	defaultVerifiedThreshold   = 70
	defaultProgressNotifyDelta = 10
)

type Option func(*Service)

// Service is the scoring engine. It is stateless between calls; concurrent
// verifications for the same tenant are collapsed through singleflight so the
// tenant row is written once per burst.
type Service struct {
	references References
	tenants    Tenants
	notifier   notify.Notifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	group      singleflight.Group

	verifiedThreshold   int
	progressNotifyDelta int
}

func NewService(references References, tenants Tenants, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		references:          references,
		tenants:             tenants,
		notifier:            notifier,
		logger:              logger,
		tracer:              tracer.NewNoop(),
		verifiedThreshold:   defaultVerifiedThreshold,
		progressNotifyDelta: defaultProgressNotifyDelta,
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

// WithTracer sets the tracer used for scoring spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithVerifiedThreshold overrides the percentage at which a tenant becomes
// verified.
func WithVerifiedThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.verifiedThreshold = threshold
		}
	}
}

// WithProgressNotifyDelta overrides the minimum percentage jump that triggers
// a progress notification.
func WithProgressNotifyDelta(delta int) Option {
	return func(s *Service) {
		if delta > 0 {
			s.progressNotifyDelta = delta
		}
	}
}

// VerifyTenant recomputes the tenant's trust percentage from all completed
// references and persists the result. Concurrent calls for the same tenant
// share one computation.
func (s *Service) VerifyTenant(ctx context.Context, tenantID string) (*Result, error) {
	value, err, _ := s.group.Do(tenantID, func() (any, error) {
		return s.verify(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Result), nil
}

func (s *Service) verify(ctx context.Context, tenantID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "verification.verify",
		tracer.String("tenant_id", tenantID),
	)
	var err error
	defer func() { span.End(err) }()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveLatency(time.Since(start).Seconds())
		}
	}()

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "tenant not found")
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tenant")
		return nil, err
	}

	completed, err := s.references.ListCompletedByTenant(ctx, tenantID)
	if err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to list completed references")
		return nil, err
	}

	result := score(tenantID, completed)
	if result == nil {
		if s.metrics != nil {
			s.metrics.IncrementVerification("no_references")
		}
		err = dErrors.New(dErrors.CodeInvalidState, "no completed references")
		return nil, err
	}

	previousPercentage := tenant.VerificationProgress
	// Verified status is monotonic: once earned it is never cleared here,
	// even if the percentage later drops below the threshold.
	result.IsVerified = tenant.IsVerified || result.Percentage >= s.verifiedThreshold
	result.NewlyVerified = result.IsVerified && !tenant.IsVerified

	if err = s.tenants.UpdateVerificationState(ctx, tenantID, result.Percentage, result.IsVerified); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification state")
		return nil, err
	}

	s.maybeNotify(ctx, tenant, result, previousPercentage)

	s.logger.InfoContext(ctx, "tenant verification computed",
		"tenant_id", tenantID,
		"percentage", result.Percentage,
		"previous_percentage", previousPercentage,
		"is_verified", result.IsVerified,
		"references", len(result.References),
	)
	if s.metrics != nil {
		s.metrics.IncrementVerification("scored")
		s.metrics.ObservePercentage(result.Percentage)
		if result.NewlyVerified {
			s.metrics.IncrementVerifiedTenant()
		}
	}
	return result, nil
}

// score aggregates all completed, rated references. Returns nil when there is
// nothing to score.
func score(tenantID string, completed []*refmodels.Record) *Result {
	result := &Result{TenantID: tenantID}
	for _, record := range completed {
		if record.Status != refmodels.StatusCompleted || record.Rating == 0 {
			continue
		}
		weight := effectiveWeight(record)
		scored := ScoredReference{
			ReferenceID:   record.ID,
			ReferenceType: record.Type,
			Rating:        record.Rating,
			Weight:        weight,
			BonusApplied:  bonusApplies(record),
			Score:         float64(record.Rating) * weight,
			PossibleScore: 5 * weight,
		}
		result.References = append(result.References, scored)
		result.VerificationScore += scored.Score
		result.TotalPossibleScore += scored.PossibleScore
	}
	if len(result.References) == 0 {
		return nil
	}
	result.Percentage = int(math.Round(100 * result.VerificationScore / result.TotalPossibleScore))
	return result
}

// maybeNotify tells the tenant about a newly earned verified status or a
// significant progress jump. Anything less would be notification spam.
func (s *Service) maybeNotify(ctx context.Context, tenant *tenantmodels.Tenant, result *Result, previousPercentage int) {
	if !result.NewlyVerified && result.Percentage-previousPercentage < s.progressNotifyDelta {
		return
	}
	delivered := s.notifier.Send(ctx, notify.Message{
		Kind:           notify.KindVerificationStatus,
		RecipientName:  tenant.FullName(),
		RecipientEmail: tenant.PersonalInfo.Email,
		TenantName:     tenant.FullName(),
		NewlyVerified:  result.NewlyVerified,
		Percentage:     result.Percentage,
	})
	if !delivered {
		s.logger.WarnContext(ctx, "verification status notification failed",
			"tenant_id", tenant.ID,
			"percentage", result.Percentage,
		)
	}
}
