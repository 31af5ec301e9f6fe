package models

// Interest is a directed expression of interest from one member to another.
// The record itself is keyed by its id; a separate pair-guard item (see
// PendingGuardPK/SK) enforces at most one pending interest per ordered pair.
type Interest struct {
	PK         string `dynamodbav:"PK" json:"-"`
	SK         string `dynamodbav:"SK" json:"-"`
	InterestID string `dynamodbav:"interestId" json:"interestId"`
	FromUser   string `dynamodbav:"fromUser" json:"fromUser"`
	ToUser     string `dynamodbav:"toUser" json:"toUser"`
	Status     string `dynamodbav:"status" json:"status"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// InterestWithProfile is an Interest expanded with a read-only snapshot of the
// counterpart member's public fields, for the sent/received listings.
type InterestWithProfile struct {
	Interest
	Profile *PublicProfile `json:"profile,omitempty"`
}

// PendingGuard marks an in-flight pending interest for an ordered pair. It is
// written and deleted in the same transaction as the interest record.
type PendingGuard struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	InterestID string `dynamodbav:"interestId"`
	CreatedAt  string `dynamodbav:"createdAt"`
}

const InterestsTable = "Interests"

// GSIs used by the sent/received listings and the reciprocal lookup
const (
	FromUserIndex = "fromUser-index"
	ToUserIndex   = "toUser-index"
)

// Key helpers for the Interests table
func InterestPK(interestID string) string { return "INTEREST#" + interestID }

const InterestSK = "META"

func PendingGuardPK(fromUser string) string { return "USER#" + fromUser }
func PendingGuardSK(toUser string) string   { return "PENDING#" + toUser }
