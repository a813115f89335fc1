package handler

import (
	"time"

	"refchain/internal/reference/models"
)

// ReferenceResponse is the tenant-facing view of a reference request. The
// token is deliberately absent: it belongs to the provider, not the tenant.
type ReferenceResponse struct {
	ID            string            `json:"id"`
	ReferenceType string            `json:"referenceType"`
	Provider      ProviderResponse  `json:"provider"`
	Status        string            `json:"status"`
	ExpiresAt     time.Time         `json:"expiresAt"`
	CreatedAt     time.Time         `json:"createdAt"`
	Attempts      []AttemptResponse `json:"attempts"`
	ReminderCount int               `json:"reminderCount"`

	Rating      int        `json:"rating,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	DeclineReason string     `json:"declineReason,omitempty"`
	DeclinedAt    *time.Time `json:"declinedAt,omitempty"`
}

type ProviderResponse struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

type AttemptResponse struct {
	Number         int       `json:"attemptNumber"`
	SentAt         time.Time `json:"sentAt"`
	DeliveryStatus string    `json:"deliveryStatus"`
}

// ResendResponse reports the outcome of a reminder send.
type ResendResponse struct {
	Reference         *ReferenceResponse `json:"reference"`
	EmailSent         bool               `json:"emailSent"`
	AttemptNumber     int                `json:"attemptNumber"`
	RemainingAttempts int                `json:"remainingAttempts"`
}

// ListResponse wraps the tenant's reference requests.
type ListResponse struct {
	References []*ReferenceResponse `json:"references"`
}

// TokenViewResponse is the provider-facing view behind a valid token. It
// carries just enough for the respond form and nothing that identifies the
// tenant beyond their name.
type TokenViewResponse struct {
	TenantName    string    `json:"tenantName"`
	ReferenceType string    `json:"referenceType"`
	ProviderName  string    `json:"providerName"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ResolutionResponse acknowledges a respond or decline.
type ResolutionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func formatReference(record *models.Record, now time.Time) *ReferenceResponse {
	attempts := make([]AttemptResponse, 0, len(record.Attempts))
	for _, attempt := range record.Attempts {
		attempts = append(attempts, AttemptResponse{
			Number:         attempt.Number,
			SentAt:         attempt.SentAt,
			DeliveryStatus: string(attempt.DeliveryStatus),
		})
	}
	return &ReferenceResponse{
		ID:            record.ID,
		ReferenceType: string(record.Type),
		Provider: ProviderResponse{
			Name:         record.Provider.Name,
			Email:        record.Provider.Email,
			Relationship: record.Provider.Relationship,
		},
		Status:        string(record.PublicStatus(now)),
		ExpiresAt:     record.ExpiresAt,
		CreatedAt:     record.CreatedAt,
		Attempts:      attempts,
		ReminderCount: record.ReminderCount,
		Rating:        record.Rating,
		Feedback:      record.Feedback,
		CompletedAt:   record.CompletedAt,
		DeclineReason: string(record.DeclineReason),
		DeclinedAt:    record.DeclinedAt,
	}
}

func formatReferences(records []*models.Record, now time.Time) []*ReferenceResponse {
	out := make([]*ReferenceResponse, 0, len(records))
	for _, record := range records {
		out = append(out, formatReference(record, now))
	}
	return out
}
