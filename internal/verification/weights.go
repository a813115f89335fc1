package verification

import (
	"refchain/internal/reference/models"
)

// Base weights reflect how much each reference type is worth before any
// bonus. Previous landlords carry the most signal about tenancy behavior;
// pure character references the least.
var baseWeights = map[models.Type]float64{
	models.TypePreviousLandlord: 4.0,
	models.TypeEmployer:         3.0,
	models.TypeSaccosMember:     2.5,
	models.TypeChamaMember:      2.5,
	models.TypeFamilyGuarantor:  2.2,
	models.TypeReligiousLeader:  1.8,
	models.TypeCommunityElder:   1.8,
	models.TypeBusinessPartner:  1.5,
	models.TypeCharacter:        1.2,
}

// Bonus multipliers reward verifiable corroboration inside the submitted
// details. A multiplier applies to both the earned score and the possible
// score for that reference, so it raises the reference's weight rather than
// inflating the percentage directly.
var bonusMultipliers = map[models.Type]float64{
	models.TypePreviousLandlord: 1.20,
	models.TypeEmployer:         1.15,
	models.TypeSaccosMember:     1.10,
	models.TypeChamaMember:      1.10,
	models.TypeFamilyGuarantor:  1.25,
	models.TypeReligiousLeader:  1.10,
	models.TypeCommunityElder:   1.10,
}

// BaseWeight returns the scoring weight of a reference type.
func BaseWeight(t models.Type) float64 {
	return baseWeights[t]
}

// bonusApplies checks the type-specific corroboration condition against the
// completed reference's details. References with no details, or whose details
// do not meet the condition, score at base weight.
func bonusApplies(record *models.Record) bool {
	if record.Details == nil {
		return false
	}
	switch record.Type {
	case models.TypePreviousLandlord:
		d := record.Details.Landlord
		return d != nil && d.WaterBillsPaid && d.ElectricalBillsPaid
	case models.TypeEmployer:
		d := record.Details.Employment
		return d != nil && d.EmployerKRAPin != "" && d.SalarySlipVerified
	case models.TypeSaccosMember, models.TypeChamaMember:
		d := record.Details.CommunityFinance
		return d != nil && d.CRBStatus == "good"
	case models.TypeFamilyGuarantor:
		d := record.Details.Guarantor
		return d != nil && d.GuarantorProperty != "" && d.WillingnessToGuarantee
	case models.TypeReligiousLeader, models.TypeCommunityElder:
		d := record.Details.Character
		return d != nil && d.CommunityStanding == "excellent"
	}
	return false
}

// effectiveWeight returns the reference's weight with any earned bonus
// applied.
func effectiveWeight(record *models.Record) float64 {
	weight := baseWeights[record.Type]
	if bonusApplies(record) {
		if multiplier, ok := bonusMultipliers[record.Type]; ok {
			weight *= multiplier
		}
	}
	return weight
}
