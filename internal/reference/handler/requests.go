package handler

import (
	"refchain/internal/reference/models"
	s "refchain/pkg/string"
)

// CreateRequest asks for a new reference on behalf of the authenticated
// tenant.
type CreateRequest struct {
	ReferenceType string          `json:"referenceType" validate:"required,oneof=employer previous_landlord character business_partner family_guarantor saccos_member chama_member religious_leader community_elder"`
	Provider      ProviderRequest `json:"provider" validate:"required"`
}

// ProviderRequest identifies the third party asked to attest.
type ProviderRequest struct {
	Name         string `json:"name" validate:"required,notblank"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"omitempty,min=7,max=20"`
	Relationship string `json:"relationship" validate:"required,notblank"`
}

// Normalize trims user-entered fields before validation.
func (r *CreateRequest) Normalize() {
	s.TrimStrings(&r.ReferenceType, &r.Provider.Name, &r.Provider.Email, &r.Provider.Phone, &r.Provider.Relationship)
}

// ToProvider converts the validated request into the domain provider.
func (r *CreateRequest) ToProvider() models.Provider {
	return models.Provider{
		Name:         r.Provider.Name,
		Email:        r.Provider.Email,
		Phone:        r.Provider.Phone,
		Relationship: r.Provider.Relationship,
	}
}

// RespondRequest is the provider's attestation payload. The details fields
// are a flat superset; the service keeps only the ones matching the stored
// reference type.
type RespondRequest struct {
	Rating   int                 `json:"rating" validate:"required,gte=1,lte=5"`
	Feedback string              `json:"feedback" validate:"required,notblank,max=2000"`
	Details  models.DetailsInput `json:"details"`
}

// Normalize trims the free-text fields before validation.
func (r *RespondRequest) Normalize() {
	s.TrimStrings(&r.Feedback)
}

// DeclineRequest is the provider's refusal payload.
type DeclineRequest struct {
	Reason  string `json:"reason" validate:"required,oneof=unreachable not_acquainted conflict_of_interest insufficient_information other"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// Normalize trims the free-text fields before validation.
func (r *DeclineRequest) Normalize() {
	s.TrimStrings(&r.Reason, &r.Comment)
}
