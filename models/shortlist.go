package models

// Shortlist is a member-owned bookmark set of other members. The targets
// attribute is a DynamoDB string set, so membership is at-most-once by
// construction and add/remove are single atomic set operations.
type Shortlist struct {
	PK      string   `dynamodbav:"PK" json:"-"`
	OwnerID string   `dynamodbav:"ownerId" json:"ownerId"`
	Targets []string `dynamodbav:"targets,stringset,omitempty" json:"targets"`
}

const ShortlistsTable = "Shortlists"

func ShortlistPK(ownerID string) string { return "USER#" + ownerID }
