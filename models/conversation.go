package models

// Conversation is the single messaging thread for an unordered pair of
// members, keyed by the canonical pair key. The lastMessage* attributes are a
// denormalized cache kept in step with the Messages table (same transaction or
// a monotonic conditional update, never an independent drift-prone write).
type Conversation struct {
	PairKey           string `dynamodbav:"pairKey" json:"-"`
	ConversationID    string `dynamodbav:"conversationId" json:"conversationId"`
	ParticipantA      string `dynamodbav:"participantA" json:"participantA"`
	ParticipantB      string `dynamodbav:"participantB" json:"participantB"`
	CreatedAt         string `dynamodbav:"createdAt" json:"createdAt"`
	LastMessageText   string `dynamodbav:"lastMessageText,omitempty" json:"lastMessageText,omitempty"`
	LastMessageSender string `dynamodbav:"lastMessageSender,omitempty" json:"lastMessageSender,omitempty"`
	LastMessageAt     string `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the counterpart of userID in the pair.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// ConversationSummary is a Conversation expanded with the other participant's
// public fields, for the per-user conversation listing.
type ConversationSummary struct {
	Conversation
	OtherProfile *PublicProfile `json:"otherProfile,omitempty"`
}

const ConversationsTable = "Conversations"

const (
	ParticipantAIndex = "participantA-index"
	ParticipantBIndex = "participantB-index"
)
