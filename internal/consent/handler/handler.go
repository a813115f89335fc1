package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"refchain/internal/consent/models"
	"refchain/internal/platform/middleware"
	"refchain/internal/transport/http/shared"
	respond "refchain/internal/transport/http/shared/json"
	dErrors "refchain/pkg/domain-errors"
	"refchain/pkg/validation"
)

// Service defines the interface for consent operations.
type Service interface {
	CreateConsent(ctx context.Context, tenantID, requesterID string, permissions models.Permissions, retention *models.DataRetention) (*models.Record, error)
	GetActiveConsent(ctx context.Context, tenantID string) (*models.Record, error)
	ListConsents(ctx context.Context, tenantID string) ([]*models.Record, error)
}

// Handler handles consent-related endpoints.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

// New creates a new consent Handler.
func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consents", h.handleCreateConsent)
	r.Get("/consents/active", h.handleGetActiveConsent)
	r.Get("/consents", h.handleListConsents)
}

func (h *Handler) handleCreateConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	tenantID := middleware.GetTenantID(ctx)

	if tenantID == "" {
		h.logger.ErrorContext(ctx, "tenantID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var createReq CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create consent request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&createReq); err != nil {
		h.logger.WarnContext(ctx, "invalid create consent request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	record, err := h.consent.CreateConsent(ctx, tenantID, tenantID, createReq.ToPermissions(), createReq.ToRetention())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create consent",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, formatConsent(record))
}

func (h *Handler) handleGetActiveConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	tenantID := middleware.GetTenantID(ctx)

	if tenantID == "" {
		h.logger.ErrorContext(ctx, "tenantID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	record, err := h.consent.GetActiveConsent(ctx, tenantID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, formatConsent(record))
}

func (h *Handler) handleListConsents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	tenantID := middleware.GetTenantID(ctx)

	if tenantID == "" {
		h.logger.ErrorContext(ctx, "tenantID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	records, err := h.consent.ListConsents(ctx, tenantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list consents",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, ListResponse{Consents: formatConsents(records)})
}
