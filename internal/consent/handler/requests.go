package handler

import (
	"refchain/internal/consent/models"
)

// CreateRequest authorizes verification activities for the authenticated
// tenant. Omitted retention falls back to the service default.
type CreateRequest struct {
	Permissions PermissionsRequest `json:"permissions"`
	Retention   *RetentionRequest  `json:"dataRetention" validate:"omitempty"`
}

type PermissionsRequest struct {
	EmployerVerification    bool `json:"employerVerification"`
	CreditBureauCheck       bool `json:"creditBureauCheck"`
	MobileMoneyAnalysis     bool `json:"mobileMoneyAnalysis"`
	UtilityBillVerification bool `json:"utilityBillVerification"`
	SaccosVerification      bool `json:"saccosVerification"`
	GuarantorVerification   bool `json:"guarantorVerification"`
}

type RetentionRequest struct {
	RetentionPeriodMonths int  `json:"retentionPeriodMonths" validate:"gte=6,lte=60"`
	AllowDataSharing      bool `json:"allowDataSharing"`
	AllowAnalytics        bool `json:"allowAnalytics"`
}

// ToPermissions converts the request into the domain permissions set.
func (r *CreateRequest) ToPermissions() models.Permissions {
	return models.Permissions{
		EmployerVerification:    r.Permissions.EmployerVerification,
		CreditBureauCheck:       r.Permissions.CreditBureauCheck,
		MobileMoneyAnalysis:     r.Permissions.MobileMoneyAnalysis,
		UtilityBillVerification: r.Permissions.UtilityBillVerification,
		SaccosVerification:      r.Permissions.SaccosVerification,
		GuarantorVerification:   r.Permissions.GuarantorVerification,
	}
}

// ToRetention converts the optional retention block, nil when omitted.
func (r *CreateRequest) ToRetention() *models.DataRetention {
	if r.Retention == nil {
		return nil
	}
	return &models.DataRetention{
		RetentionPeriodMonths: r.Retention.RetentionPeriodMonths,
		AllowDataSharing:      r.Retention.AllowDataSharing,
		AllowAnalytics:        r.Retention.AllowAnalytics,
	}
}
