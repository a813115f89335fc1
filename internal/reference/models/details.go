package models

import (
	"fmt"
	"strings"

	dErrors "refchain/pkg/domain-errors"
)

// Details is the tagged union of category-specific verification payloads.
// Exactly one of the shape pointers is set, matching Category.
type Details struct {
	Category Category `json:"category"`

	Employment       *EmploymentDetails       `json:"employment,omitempty"`
	Landlord         *LandlordDetails         `json:"landlord,omitempty"`
	Character        *CharacterDetails        `json:"character,omitempty"`
	CommunityFinance *CommunityFinanceDetails `json:"communityFinance,omitempty"`
	Guarantor        *GuarantorDetails        `json:"guarantor,omitempty"`
}

// EmploymentDetails is attested by the tenant's employer.
type EmploymentDetails struct {
	Position           string  `json:"position"`
	EmploymentDuration string  `json:"employmentDuration"`
	MonthlyIncome      float64 `json:"monthlyIncome,omitempty"`
	EmployerKRAPin     string  `json:"employerKRAPin,omitempty"`
	SalarySlipVerified bool    `json:"salarySlipVerified"`
}

// LandlordDetails is attested by a previous landlord.
type LandlordDetails struct {
	TenancyDuration     string  `json:"tenancyDuration"`
	MonthlyRent         float64 `json:"monthlyRent,omitempty"`
	RentPaymentHistory  string  `json:"rentPaymentHistory"`
	WaterBillsPaid      bool    `json:"waterBillsPaid"`
	ElectricalBillsPaid bool    `json:"electricalBillsPaid"`
	PropertyCondition   string  `json:"propertyCondition,omitempty"`
}

// CharacterDetails covers character, religious leader, and community elder
// references.
type CharacterDetails struct {
	KnownDuration     string `json:"knownDuration"`
	CommunityStanding string `json:"communityStanding"`
	Trustworthiness   string `json:"trustworthiness,omitempty"`
}

// CommunityFinanceDetails covers SACCOS, chama, and business partner
// references.
type CommunityFinanceDetails struct {
	MembershipDuration   string `json:"membershipDuration"`
	ContributionHistory  string `json:"contributionHistory,omitempty"`
	CRBStatus            string `json:"crbStatus,omitempty"`
	FinancialReliability string `json:"financialReliability,omitempty"`
}

// GuarantorDetails is attested by a family guarantor.
type GuarantorDetails struct {
	Relationship           string `json:"relationship"`
	GuarantorProperty      string `json:"guarantorProperty,omitempty"`
	WillingnessToGuarantee bool   `json:"willingnessToGuarantee"`
	FinancialCapacity      string `json:"financialCapacity,omitempty"`
}

// DetailsInput is the flat provider-submitted payload. Providers fill in
// whatever their form shows; BuildDetails keeps only the fields belonging to
// the category implied by the stored reference type and discards the rest.
type DetailsInput struct {
	// Employment fields.
	Position           string  `json:"position,omitempty"`
	EmploymentDuration string  `json:"employmentDuration,omitempty"`
	MonthlyIncome      float64 `json:"monthlyIncome,omitempty"`
	EmployerKRAPin     string  `json:"employerKRAPin,omitempty"`
	SalarySlipVerified bool    `json:"salarySlipVerified,omitempty"`

	// Landlord fields.
	TenancyDuration     string  `json:"tenancyDuration,omitempty"`
	MonthlyRent         float64 `json:"monthlyRent,omitempty"`
	RentPaymentHistory  string  `json:"rentPaymentHistory,omitempty"`
	WaterBillsPaid      bool    `json:"waterBillsPaid,omitempty"`
	ElectricalBillsPaid bool    `json:"electricalBillsPaid,omitempty"`
	PropertyCondition   string  `json:"propertyCondition,omitempty"`

	// Character fields.
	KnownDuration     string `json:"knownDuration,omitempty"`
	CommunityStanding string `json:"communityStanding,omitempty"`
	Trustworthiness   string `json:"trustworthiness,omitempty"`

	// Community finance fields.
	MembershipDuration   string `json:"membershipDuration,omitempty"`
	ContributionHistory  string `json:"contributionHistory,omitempty"`
	CRBStatus            string `json:"crbStatus,omitempty"`
	FinancialReliability string `json:"financialReliability,omitempty"`

	// Guarantor fields.
	Relationship           string `json:"relationship,omitempty"`
	GuarantorProperty      string `json:"guarantorProperty,omitempty"`
	WillingnessToGuarantee bool   `json:"willingnessToGuarantee,omitempty"`
	FinancialCapacity      string `json:"financialCapacity,omitempty"`
}

// BuildDetails validates the submitted payload against the category implied
// by the reference type and returns the stored shape. Fields belonging to
// other categories are silently dropped.
func BuildDetails(t Type, in DetailsInput) (*Details, error) {
	category, ok := CategoryOf(t)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown reference type: %s", t))
	}

	switch category {
	case CategoryEmployment:
		if err := requireFields(map[string]string{
			"position":           in.Position,
			"employmentDuration": in.EmploymentDuration,
		}); err != nil {
			return nil, err
		}
		return &Details{Category: category, Employment: &EmploymentDetails{
			Position:           in.Position,
			EmploymentDuration: in.EmploymentDuration,
			MonthlyIncome:      in.MonthlyIncome,
			EmployerKRAPin:     in.EmployerKRAPin,
			SalarySlipVerified: in.SalarySlipVerified,
		}}, nil

	case CategoryLandlord:
		if err := requireFields(map[string]string{
			"tenancyDuration":    in.TenancyDuration,
			"rentPaymentHistory": in.RentPaymentHistory,
		}); err != nil {
			return nil, err
		}
		return &Details{Category: category, Landlord: &LandlordDetails{
			TenancyDuration:     in.TenancyDuration,
			MonthlyRent:         in.MonthlyRent,
			RentPaymentHistory:  in.RentPaymentHistory,
			WaterBillsPaid:      in.WaterBillsPaid,
			ElectricalBillsPaid: in.ElectricalBillsPaid,
			PropertyCondition:   in.PropertyCondition,
		}}, nil

	case CategoryCharacter:
		if err := requireFields(map[string]string{
			"knownDuration":     in.KnownDuration,
			"communityStanding": in.CommunityStanding,
		}); err != nil {
			return nil, err
		}
		return &Details{Category: category, Character: &CharacterDetails{
			KnownDuration:     in.KnownDuration,
			CommunityStanding: in.CommunityStanding,
			Trustworthiness:   in.Trustworthiness,
		}}, nil

	case CategoryCommunityFinance:
		if err := requireFields(map[string]string{
			"membershipDuration": in.MembershipDuration,
		}); err != nil {
			return nil, err
		}
		return &Details{Category: category, CommunityFinance: &CommunityFinanceDetails{
			MembershipDuration:   in.MembershipDuration,
			ContributionHistory:  in.ContributionHistory,
			CRBStatus:            in.CRBStatus,
			FinancialReliability: in.FinancialReliability,
		}}, nil

	case CategoryGuarantor:
		if err := requireFields(map[string]string{
			"relationship": in.Relationship,
		}); err != nil {
			return nil, err
		}
		return &Details{Category: category, Guarantor: &GuarantorDetails{
			Relationship:           in.Relationship,
			GuarantorProperty:      in.GuarantorProperty,
			WillingnessToGuarantee: in.WillingnessToGuarantee,
			FinancialCapacity:      in.FinancialCapacity,
		}}, nil
	}

	return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown details category: %s", category))
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required for this reference type", name))
		}
	}
	return nil
}
