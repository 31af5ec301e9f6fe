package models

// MemberProfile mirrors the profile store's member record. Lifecycle of this
// table is owned elsewhere; this core only reads it for ranking, eligibility
// checks, and public-field projection.
type MemberProfile struct {
	UserID         string `dynamodbav:"userId" json:"userId"`
	Name           string `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Gender         string `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	DOB            string `dynamodbav:"dob,omitempty" json:"dob,omitempty"`
	Religion       string `dynamodbav:"religion,omitempty" json:"religion,omitempty"`
	MotherTongue   string `dynamodbav:"motherTongue,omitempty" json:"motherTongue,omitempty"`
	City           string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	Occupation     string `dynamodbav:"occupation,omitempty" json:"occupation,omitempty"`
	MembershipTier string `dynamodbav:"membershipTier,omitempty" json:"membershipTier,omitempty"`
	PhotoKey       string `dynamodbav:"photoKey,omitempty" json:"-"`

	// Private fields. Never copied into PublicProfile.
	EmailID       string `dynamodbav:"emailId,omitempty" json:"-"`
	InternalNotes string `dynamodbav:"internalNotes,omitempty" json:"-"`
}

// PublicProfile is the display-field subset of a member shared with other
// members. It is built by explicit field copy so private fields are excluded
// by construction, not by caller discipline.
type PublicProfile struct {
	UserID         string `json:"userId"`
	Name           string `json:"name,omitempty"`
	PhotoURL       string `json:"photoUrl,omitempty"`
	DOB            string `json:"dob,omitempty"`
	City           string `json:"city,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
	Religion       string `json:"religion,omitempty"`
	MembershipTier string `json:"membershipTier,omitempty"`
}

// ScoredProfile is a public profile with the match score attached. Scores are
// computed per request and never persisted.
type ScoredProfile struct {
	PublicProfile
	Score int `json:"score"`
}

const UserProfilesTable = "UserProfiles"
