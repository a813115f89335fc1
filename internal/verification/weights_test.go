package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"refchain/internal/reference/models"
)

func completedWith(t models.Type, details *models.Details) *models.Record {
	return &models.Record{
		ID:      "r1",
		Type:    t,
		Status:  models.StatusCompleted,
		Rating:  5,
		Details: details,
	}
}

func TestBaseWeights_Table(t *testing.T) {
	expected := map[models.Type]float64{
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
	for refType, weight := range expected {
		assert.Equal(t, weight, BaseWeight(refType), string(refType))
	}
}

func TestBonusApplies(t *testing.T) {
	tests := []struct {
		name    string
		record  *models.Record
		applies bool
		weight  float64
	}{
		{
			name: "landlord with both bills paid",
			record: completedWith(models.TypePreviousLandlord, &models.Details{
				Category: models.CategoryLandlord,
				Landlord: &models.LandlordDetails{WaterBillsPaid: true, ElectricalBillsPaid: true},
			}),
			applies: true,
			weight:  4.8,
		},
		{
			name: "landlord with one bill unpaid",
			record: completedWith(models.TypePreviousLandlord, &models.Details{
				Category: models.CategoryLandlord,
				Landlord: &models.LandlordDetails{WaterBillsPaid: true},
			}),
			applies: false,
			weight:  4.0,
		},
		{
			name: "employer with kra pin and verified slip",
			record: completedWith(models.TypeEmployer, &models.Details{
				Category:   models.CategoryEmployment,
				Employment: &models.EmploymentDetails{EmployerKRAPin: "A0123", SalarySlipVerified: true},
			}),
			applies: true,
			weight:  3.0 * 1.15,
		},
		{
			name: "saccos member with good crb",
			record: completedWith(models.TypeSaccosMember, &models.Details{
				Category:         models.CategoryCommunityFinance,
				CommunityFinance: &models.CommunityFinanceDetails{CRBStatus: "good"},
			}),
			applies: true,
			weight:  2.5 * 1.10,
		},
		{
			name: "guarantor with property and willingness",
			record: completedWith(models.TypeFamilyGuarantor, &models.Details{
				Category:  models.CategoryGuarantor,
				Guarantor: &models.GuarantorDetails{GuarantorProperty: "title deed", WillingnessToGuarantee: true},
			}),
			applies: true,
			weight:  2.2 * 1.25,
		},
		{
			name: "religious leader with excellent standing",
			record: completedWith(models.TypeReligiousLeader, &models.Details{
				Category:  models.CategoryCharacter,
				Character: &models.CharacterDetails{CommunityStanding: "excellent"},
			}),
			applies: true,
			weight:  1.8 * 1.10,
		},
		{
			name: "business partner has no bonus path",
			record: completedWith(models.TypeBusinessPartner, &models.Details{
				Category:         models.CategoryCommunityFinance,
				CommunityFinance: &models.CommunityFinanceDetails{CRBStatus: "good"},
			}),
			applies: false,
			weight:  1.5,
		},
		{
			name:    "nil details never earns a bonus",
			record:  completedWith(models.TypePreviousLandlord, nil),
			applies: false,
			weight:  4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.applies, bonusApplies(tt.record))
			assert.InDelta(t, tt.weight, effectiveWeight(tt.record), 1e-9)
		})
	}
}
