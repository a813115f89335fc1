package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"refchain/internal/platform/middleware"
	"refchain/internal/transport/http/shared"
	respond "refchain/internal/transport/http/shared/json"
	"refchain/internal/verification"
	dErrors "refchain/pkg/domain-errors"
)

// Service defines the interface for verification operations.
type Service interface {
	VerifyTenant(ctx context.Context, tenantID string) (*verification.Result, error)
}

// Handler handles verification endpoints.
type Handler struct {
	logger       *slog.Logger
	verification Service
}

// New creates a new verification Handler.
func New(verification Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		verification: verification,
	}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification/verify", h.handleVerify)
}

// VerifyResponse is the scoring result returned to the tenant.
type VerifyResponse struct {
	VerificationScore  float64                   `json:"verificationScore"`
	TotalPossibleScore float64                   `json:"totalPossibleScore"`
	Percentage         int                       `json:"verificationPercentage"`
	IsVerified         bool                      `json:"isVerified"`
	References         []ScoredReferenceResponse `json:"references"`
}

type ScoredReferenceResponse struct {
	ReferenceID   string  `json:"referenceId"`
	ReferenceType string  `json:"referenceType"`
	Rating        int     `json:"rating"`
	Weight        float64 `json:"weight"`
	BonusApplied  bool    `json:"bonusApplied"`
	Score         float64 `json:"score"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.verification.VerifyTenant(ctx, tenantID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to verify tenant",
			"request_id", requestID,
			"tenant_id", tenantID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	references := make([]ScoredReferenceResponse, 0, len(result.References))
	for _, scored := range result.References {
		references = append(references, ScoredReferenceResponse{
			ReferenceID:   scored.ReferenceID,
			ReferenceType: string(scored.ReferenceType),
			Rating:        scored.Rating,
			Weight:        scored.Weight,
			BonusApplied:  scored.BonusApplied,
			Score:         scored.Score,
		})
	}

	respond.WriteJSON(w, http.StatusOK, VerifyResponse{
		VerificationScore:  result.VerificationScore,
		TotalPossibleScore: result.TotalPossibleScore,
		Percentage:         result.Percentage,
		IsVerified:         result.IsVerified,
		References:         references,
	})
}
