package models

import (
	"time"

	dErrors "refchain/pkg/domain-errors"
)

// Status is the consent lifecycle state. There is no explicit delete:
// a consent is only ever superseded by a newer one.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// RevokedReasonSuperseded marks consents revoked because the tenant created
// a new one. Creating a consent atomically revokes all prior active consents.
const RevokedReasonSuperseded = "new_consent_created"

// Permissions enumerates the verification capabilities a tenant authorizes.
type Permissions struct {
	EmployerVerification    bool `json:"employerVerification"`
	CreditBureauCheck       bool `json:"creditBureauCheck"`
	MobileMoneyAnalysis     bool `json:"mobileMoneyAnalysis"`
	UtilityBillVerification bool `json:"utilityBillVerification"`
	SaccosVerification      bool `json:"saccosVerification"`
	GuarantorVerification   bool `json:"guarantorVerification"`
}

// DataRetention controls how long collected reference data may be kept.
type DataRetention struct {
	RetentionPeriodMonths int  `json:"retentionPeriodMonths"`
	AllowDataSharing      bool `json:"allowDataSharing"`
	AllowAnalytics        bool `json:"allowAnalytics"`
}

const (
	MinRetentionMonths = 6
	MaxRetentionMonths = 60
)

// DefaultRetention returns the retention policy applied when the tenant
// does not specify one.
func DefaultRetention() DataRetention {
	return DataRetention{
		RetentionPeriodMonths: 24,
		AllowDataSharing:      false,
		AllowAnalytics:        true,
	}
}

// Validate checks the retention window bounds.
func (r DataRetention) Validate() error {
	if r.RetentionPeriodMonths < MinRetentionMonths || r.RetentionPeriodMonths > MaxRetentionMonths {
		return dErrors.New(dErrors.CodeValidation, "retention period must be between 6 and 60 months")
	}
	return nil
}

// Record is a tenant's authorization for verification activities.
//
// Invariant: at most one active Record exists per tenant at any time. The
// store enforces this with an atomic revoke-then-insert keyed by tenant ID.
type Record struct {
	ID          string
	TenantID    string
	RequesterID string

	Permissions   Permissions
	DataRetention DataRetention

	Status        Status
	CreatedAt     time.Time
	RevokedAt     *time.Time
	RevokedReason string
}

// IsActive reports whether the consent is currently in force.
func (r *Record) IsActive() bool {
	return r.Status == StatusActive
}
