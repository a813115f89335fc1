// Package notify defines the gateway contract for outbound reference and
// verification messages. The delivery channel (email/SMS provider) lives
// outside this service; implementations here only shape and dispatch the
// typed message descriptors.
//
// Delivery is best-effort by design: Send reports success or failure and
// never returns an error, and callers must not roll back state transitions
// on a failed send.
package notify

import (
	"context"
	"time"
)

// Kind identifies the message template to render.
type Kind string

const (
	KindReferenceRequest   Kind = "reference_request"
	KindReferenceReminder  Kind = "reference_reminder"
	KindReferenceCompleted Kind = "reference_completed"
	KindReferenceDeclined  Kind = "reference_declined"
	KindVerificationStatus Kind = "verification_status"
)

// Message carries the fields the templates need. Only the fields relevant to
// the Kind are populated by callers.
type Message struct {
	Kind Kind

	RecipientName  string
	RecipientEmail string

	TenantName    string
	ReferenceType string

	// Reference request / reminder fields.
	Token           string
	ExpiresAt       time.Time
	DaysUntilExpiry int

	// Completion fields.
	Rating   int
	Feedback string

	// Decline fields.
	DeclineReason string

	// Verification status fields.
	NewlyVerified bool
	Percentage    int
}

// Notifier dispatches a message and reports delivery success. Implementations
// must swallow provider errors and map them to false.
type Notifier interface {
	Send(ctx context.Context, msg Message) bool
}
