package models

// Interest statuses
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusWithdrawn = "withdrawn"
	StatusMutual    = "mutual"
)

// Notification types
const (
	NotificationInterestAccepted = "interest_accepted"
	NotificationProfileView      = "profile_view"
	NotificationMessageReceived  = "message_received"
)

// Message statuses (transitions past "sent" are owned by the delivery layer)
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusSeen      = "seen"
)

// TimestampFormat is a fixed-width UTC layout. Trailing zeros are kept so that
// timestamps stored in string sort keys order lexicographically.
const TimestampFormat = "2006-01-02T15:04:05.000000000Z"
