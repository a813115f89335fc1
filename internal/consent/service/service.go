package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"refchain/internal/consent/metrics"
	"refchain/internal/consent/models"
	"refchain/internal/sentinel"
	tenantmodels "refchain/internal/tenant/models"
	dErrors "refchain/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store defines the persistence interface for consent records.
// Error Contract:
// - FindActiveByTenant returns sentinel.ErrNotFound when no active consent exists
// - CreateSuperseding atomically revokes prior active consents and inserts the new one
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	CreateSuperseding(ctx context.Context, consent *models.Record, now time.Time) (int, error)
	FindActiveByTenant(ctx context.Context, tenantID string) (*models.Record, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*models.Record, error)
}

// Directory resolves tenant IDs against the external tenant profile service.
type Directory interface {
	FindByID(ctx context.Context, tenantID string) (*tenantmodels.Tenant, error)
}

type Option func(*Service)

// Service owns the consent ledger: one active consent per tenant, superseded
// on each new creation, never deleted.
type Service struct {
	store     Store
	directory Directory
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(store Store, directory Directory, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		directory: directory,
		logger:    logger,
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

// CreateConsent records a new authorization for the tenant. Any prior active
// consent is revoked in the same store operation with reason
// "new_consent_created"; creating the first consent is not an error.
func (s *Service) CreateConsent(ctx context.Context, tenantID, requesterID string, permissions models.Permissions, retention *models.DataRetention) (*models.Record, error) {
	if tenantID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}

	if _, err := s.directory.FindByID(ctx, tenantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve tenant")
	}

	applied := models.DefaultRetention()
	if retention != nil {
		if err := retention.Validate(); err != nil {
			return nil, err
		}
		applied = *retention
	}

	now := time.Now()
	record := &models.Record{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		RequesterID:   requesterID,
		Permissions:   permissions,
		DataRetention: applied,
		Status:        models.StatusActive,
		CreatedAt:     now,
	}

	superseded, err := s.store.CreateSuperseding(ctx, record, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save consent")
	}

	s.logger.InfoContext(ctx, "consent created",
		"tenant_id", tenantID,
		"consent_id", record.ID,
		"superseded", superseded,
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
		if superseded > 0 {
			s.metrics.AddSuperseded(superseded)
		}
	}

	return record, nil
}

// GetActiveConsent returns the tenant's single active consent.
func (s *Service) GetActiveConsent(ctx context.Context, tenantID string) (*models.Record, error) {
	record, err := s.store.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active consent")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent")
	}
	return record, nil
}

// ListConsents returns the tenant's full consent history, newest last.
func (s *Service) ListConsents(ctx context.Context, tenantID string) ([]*models.Record, error) {
	records, err := s.store.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	return records, nil
}
