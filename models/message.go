package models

// Message is one immutable entry in a conversation. The range key embeds the
// server-assigned creation timestamp, so a plain range query returns messages
// in creation order.
type Message struct {
	PairKey     string `dynamodbav:"pairKey" json:"-"`
	MessageSort string `dynamodbav:"messageSort" json:"-"`
	MessageID   string `dynamodbav:"messageId" json:"messageId"`
	SenderID    string `dynamodbav:"senderId" json:"senderId"`
	Text        string `dynamodbav:"text" json:"text"`
	Status      string `dynamodbav:"status" json:"status"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

const MessagesTable = "Messages"

func MessageSortKey(createdAt, messageID string) string {
	return createdAt + "#" + messageID
}
