package models

// PersonalInfo carries the contact fields the verification flow needs.
// Profile CRUD itself is owned by another service; this is the read model.
type PersonalInfo struct {
	FirstName string
	LastName  string
	Email     string
}

// Tenant is the directory read model plus the verification state fields
// owned by the scoring engine.
type Tenant struct {
	ID           string
	PersonalInfo PersonalInfo

	// VerificationProgress is the weighted trust percentage [0,100].
	VerificationProgress int
	// IsVerified is monotonic: once set by the scoring engine it is never
	// cleared, even if later references drag the percentage below threshold.
	IsVerified bool
}

// FullName renders the display name used in notifications.
func (t *Tenant) FullName() string {
	if t.PersonalInfo.FirstName == "" {
		return t.PersonalInfo.LastName
	}
	if t.PersonalInfo.LastName == "" {
		return t.PersonalInfo.FirstName
	}
	return t.PersonalInfo.FirstName + " " + t.PersonalInfo.LastName
}
