package models

// Notification records a relationship event for a member to see later.
// The sort key embeds the creation timestamp so listings come back
// newest-first straight from the range query.
type Notification struct {
	PK             string  `dynamodbav:"PK" json:"-"`
	SK             string  `dynamodbav:"SK" json:"-"`
	NotificationID string  `dynamodbav:"notificationId" json:"notificationId"`
	UserID         string  `dynamodbav:"userId" json:"userId"`
	Type           string  `dynamodbav:"type" json:"type"`
	Title          string  `dynamodbav:"title" json:"title"`
	Message        string  `dynamodbav:"message" json:"message"`
	IsRead         bool    `dynamodbav:"isRead" json:"isRead"`
	RedirectTo     *string `dynamodbav:"redirectTo,omitempty" json:"redirectTo,omitempty"`
	SenderID       *string `dynamodbav:"senderId,omitempty" json:"senderId,omitempty"`
	CreatedAt      string  `dynamodbav:"createdAt" json:"createdAt"`
}

// NotificationWithProfile attaches the sender's public display fields.
type NotificationWithProfile struct {
	Notification
	SenderProfile *PublicProfile `json:"senderProfile,omitempty"`
}

const NotificationsTable = "Notifications"

func NotificationPK(userID string) string { return "USER#" + userID }
func NotificationSK(createdAt, notificationID string) string {
	return "NOTIF#" + createdAt + "#" + notificationID
}
