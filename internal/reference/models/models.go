package models

import (
	"time"
)

// Type identifies who is attesting for the tenant. The set is closed; each
// type maps to exactly one Category for payload validation and scoring.
type Type string

const (
	TypeEmployer         Type = "employer"
	TypePreviousLandlord Type = "previous_landlord"
	TypeCharacter        Type = "character"
	TypeBusinessPartner  Type = "business_partner"
	TypeFamilyGuarantor  Type = "family_guarantor"
	TypeSaccosMember     Type = "saccos_member"
	TypeChamaMember      Type = "chama_member"
	TypeReligiousLeader  Type = "religious_leader"
	TypeCommunityElder   Type = "community_elder"
)

// Types lists all reference types in a stable order.
func Types() []Type {
	return []Type{
		TypeEmployer,
		TypePreviousLandlord,
		TypeCharacter,
		TypeBusinessPartner,
		TypeFamilyGuarantor,
		TypeSaccosMember,
		TypeChamaMember,
		TypeReligiousLeader,
		TypeCommunityElder,
	}
}

// IsValid reports whether t is one of the nine known reference types.
func (t Type) IsValid() bool {
	_, ok := CategoryOf(t)
	return ok
}

// Category groups the nine reference types into the five mutually exclusive
// verification-details payload shapes.
type Category string

const (
	CategoryEmployment       Category = "employment"
	CategoryLandlord         Category = "landlord"
	CategoryCharacter        Category = "character"
	CategoryCommunityFinance Category = "community_finance"
	CategoryGuarantor        Category = "guarantor"
)

// CategoryOf maps a reference type to its details category. The mapping is
// total over valid types.
func CategoryOf(t Type) (Category, bool) {
	switch t {
	case TypeEmployer:
		return CategoryEmployment, true
	case TypePreviousLandlord:
		return CategoryLandlord, true
	case TypeCharacter, TypeReligiousLeader, TypeCommunityElder:
		return CategoryCharacter, true
	case TypeSaccosMember, TypeChamaMember, TypeBusinessPartner:
		return CategoryCommunityFinance, true
	case TypeFamilyGuarantor:
		return CategoryGuarantor, true
	default:
		return "", false
	}
}

// Status is the reference lifecycle state. Only pending, completed, and
// declined are persisted; expired is derived from ExpiresAt at read time and
// surfaced through PublicStatus.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusExpired   Status = "expired"
)

// DeliveryStatus tracks the notification gateway's report for one attempt.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryBounced   DeliveryStatus = "bounced"
)

// DeclineReason is the provider's stated reason for refusing to attest.
type DeclineReason string

const (
	DeclineUnreachable             DeclineReason = "unreachable"
	DeclineNotAcquainted           DeclineReason = "not_acquainted"
	DeclineConflictOfInterest      DeclineReason = "conflict_of_interest"
	DeclineInsufficientInformation DeclineReason = "insufficient_information"
	DeclineOther                   DeclineReason = "other"
)

// IsValid reports whether r is a known decline reason.
func (r DeclineReason) IsValid() bool {
	switch r {
	case DeclineUnreachable, DeclineNotAcquainted, DeclineConflictOfInterest,
		DeclineInsufficientInformation, DeclineOther:
		return true
	}
	return false
}

// Provider is the third party asked to attest. Providers are unauthenticated;
// the reference token is their only credential.
type Provider struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship"`
}

// Attempt records one send of the reference request to the provider.
type Attempt struct {
	Number          int            `json:"attemptNumber"`
	SentAt          time.Time      `json:"sentAt"`
	DeliveryStatus  DeliveryStatus `json:"deliveryStatus"`
	DeliveryDetails string         `json:"deliveryDetails,omitempty"`
}

// Record is one token-addressable attestation request.
//
// Lifecycle: created pending with attempt #1; mutated by resend (appends an
// attempt) or resolved exactly once by respond (completed) or decline
// (declined). No mutation after resolution.
type Record struct {
	ID       string
	TenantID string
	Type     Type
	Provider Provider

	// Token is the single-use secret identifier the provider presents
	// instead of an authenticated session.
	Token string

	Status    Status
	ExpiresAt time.Time
	CreatedAt time.Time

	Attempts         []Attempt
	ReminderCount    int
	LastReminderSent *time.Time

	// Completion fields.
	Details     *Details
	Rating      int
	Feedback    string
	CompletedAt *time.Time

	// Decline fields.
	DeclineReason  DeclineReason
	DeclineComment string
	DeclinedAt     *time.Time
}

// IsExpired reports whether a still-pending record is past its deadline.
func (r *Record) IsExpired(now time.Time) bool {
	return r.Status == StatusPending && now.After(r.ExpiresAt)
}

// PublicStatus derives the four-way state exposed to callers. Expiry is never
// persisted; it is computed here so clients do not reverse-engineer it from
// timestamps.
func (r *Record) PublicStatus(now time.Time) Status {
	if r.IsExpired(now) {
		return StatusExpired
	}
	return r.Status
}

// LastAttempt returns the most recent send attempt.
func (r *Record) LastAttempt() *Attempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}
