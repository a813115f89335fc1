package verification

import (
	"refchain/internal/reference/models"
)

// ScoredReference is one completed reference's contribution to the total.
type ScoredReference struct {
	ReferenceID   string
	ReferenceType models.Type
	Rating        int
	Weight        float64
	BonusApplied  bool
	Score         float64
	PossibleScore float64
}

// Result is the outcome of scoring a tenant's completed references.
type Result struct {
	TenantID           string
	VerificationScore  float64
	TotalPossibleScore float64
	Percentage         int
	IsVerified         bool
	NewlyVerified      bool
	References         []ScoredReference
}
