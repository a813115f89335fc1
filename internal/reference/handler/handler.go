package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"refchain/internal/platform/device"
	"refchain/internal/platform/middleware"
	"refchain/internal/reference/models"
	"refchain/internal/reference/service"
	"refchain/internal/transport/http/shared"
	respond "refchain/internal/transport/http/shared/json"
	dErrors "refchain/pkg/domain-errors"
	"refchain/pkg/validation"
)

// Service defines the interface for reference lifecycle operations.
type Service interface {
	RequestReference(ctx context.Context, tenantID string, referenceType models.Type, provider models.Provider) (*models.Record, error)
	ResendReference(ctx context.Context, referenceID string) (*service.ResendResult, error)
	DeclineReference(ctx context.Context, token string, reason models.DeclineReason, comment string) (*models.Record, error)
	RespondReference(ctx context.Context, token string, feedback string, rating int, input models.DetailsInput) (*models.Record, error)
	GetByToken(ctx context.Context, token string) (*service.TokenView, error)
	ListForTenant(ctx context.Context, tenantID string) ([]*models.Record, error)
}

// Handler handles reference-related endpoints.
type Handler struct {
	logger    *slog.Logger
	reference Service
}

// New creates a new reference Handler.
func New(reference Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		reference: reference,
	}
}

// Register registers the tenant-facing reference routes. These sit behind the
// session auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/references", h.handleCreateReference)
	r.Get("/references", h.handleListReferences)
	r.Post("/references/{id}/resend", h.handleResendReference)
}

// RegisterPublic registers the provider-facing token routes. No session auth:
// the token in the path is the credential.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/references/token/{token}", h.handleGetByToken)
	r.Post("/references/token/{token}/respond", h.handleRespondReference)
	r.Post("/references/token/{token}/decline", h.handleDeclineReference)
}

func (h *Handler) handleCreateReference(w http.ResponseWriter, r *http.Request) {
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
		h.logger.WarnContext(ctx, "failed to decode create reference request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	createReq.Normalize()
	if err := validation.Validate(&createReq); err != nil {
		h.logger.WarnContext(ctx, "invalid create reference request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	record, err := h.reference.RequestReference(ctx, tenantID, models.Type(createReq.ReferenceType), createReq.ToProvider())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create reference request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, formatReference(record, time.Now()))
}

func (h *Handler) handleListReferences(w http.ResponseWriter, r *http.Request) {
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

	records, err := h.reference.ListForTenant(ctx, tenantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list reference requests",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, ListResponse{References: formatReferences(records, time.Now())})
}

func (h *Handler) handleResendReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	referenceID := chi.URLParam(r, "id")

	result, err := h.reference.ResendReference(ctx, referenceID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to resend reference request",
			"request_id", requestID,
			"reference_id", referenceID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, ResendResponse{
		Reference:         formatReference(result.Reference, time.Now()),
		EmailSent:         result.EmailSent,
		AttemptNumber:     result.AttemptNumber,
		RemainingAttempts: result.RemainingAttempts,
	})
}

func (h *Handler) handleGetByToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	view, err := h.reference.GetByToken(ctx, token)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, TokenViewResponse{
		TenantName:    view.TenantName,
		ReferenceType: string(view.Reference.Type),
		ProviderName:  view.Reference.Provider.Name,
		ExpiresAt:     view.Reference.ExpiresAt,
	})
}

func (h *Handler) handleRespondReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	token := chi.URLParam(r, "token")

	var respondReq RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&respondReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode respond request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	respondReq.Normalize()
	if err := validation.Validate(&respondReq); err != nil {
		h.logger.WarnContext(ctx, "invalid respond request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	record, err := h.reference.RespondReference(ctx, token, respondReq.Feedback, respondReq.Rating, respondReq.Details)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to resolve reference response",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "provider responded",
		"request_id", requestID,
		"reference_id", record.ID,
		"device", device.Describe(r.UserAgent()),
	)
	respond.WriteJSON(w, http.StatusOK, ResolutionResponse{
		Status:  string(record.Status),
		Message: "Thank you for providing this reference",
	})
}

func (h *Handler) handleDeclineReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	token := chi.URLParam(r, "token")

	var declineReq DeclineRequest
	if err := json.NewDecoder(r.Body).Decode(&declineReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode decline request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	declineReq.Normalize()
	if err := validation.Validate(&declineReq); err != nil {
		h.logger.WarnContext(ctx, "invalid decline request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	record, err := h.reference.DeclineReference(ctx, token, models.DeclineReason(declineReq.Reason), declineReq.Comment)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decline reference",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "provider declined",
		"request_id", requestID,
		"reference_id", record.ID,
		"device", device.Describe(r.UserAgent()),
	)
	respond.WriteJSON(w, http.StatusOK, ResolutionResponse{
		Status:  string(record.Status),
		Message: "The tenant has been notified of your decision",
	})
}
