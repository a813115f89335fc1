package handler

import (
	"time"

	"refchain/internal/consent/models"
)

// ConsentResponse is the API view of a consent record.
type ConsentResponse struct {
	ID            string               `json:"id"`
	Permissions   models.Permissions   `json:"permissions"`
	DataRetention models.DataRetention `json:"dataRetention"`
	Status        string               `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	RevokedAt     *time.Time           `json:"revokedAt,omitempty"`
	RevokedReason string               `json:"revokedReason,omitempty"`
}

// ListResponse wraps the tenant's consent history.
type ListResponse struct {
	Consents []*ConsentResponse `json:"consents"`
}

func formatConsent(record *models.Record) *ConsentResponse {
	return &ConsentResponse{
		ID:            record.ID,
		Permissions:   record.Permissions,
		DataRetention: record.DataRetention,
		Status:        string(record.Status),
		CreatedAt:     record.CreatedAt,
		RevokedAt:     record.RevokedAt,
		RevokedReason: record.RevokedReason,
	}
}

func formatConsents(records []*models.Record) []*ConsentResponse {
	out := make([]*ConsentResponse, 0, len(records))
	for _, record := range records {
		out = append(out, formatConsent(record))
	}
	return out
}
