package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"saathi_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// notificationPageSize bounds one page of the partition walk, not how many
// notifications a member can have.
const notificationPageSize int32 = 500

// NotificationService records relationship events for members to see later.
// Creation is synchronous; read tracking is a plain idempotent flag flip.
type NotificationService struct {
	Dynamo   DB
	Profiles *ProfileService
}

// Emit persists a notification for recipient and returns it. Callers decide
// whether a failure here is fatal; for interest accepts it is reported as a
// non-fatal warning because the relationship state is already durable.
func (ns *NotificationService) Emit(ctx context.Context, recipient, notificationType, title, message string, redirectTo, senderID *string) (*models.Notification, error) {
	if recipient == "" || notificationType == "" {
		return nil, fmt.Errorf("%w: recipient and type are required", ErrValidation)
	}

	createdAt := time.Now().UTC().Format(models.TimestampFormat)
	notification := models.Notification{
		PK:             models.NotificationPK(recipient),
		SK:             models.NotificationSK(createdAt, uuid.NewString()),
		NotificationID: uuid.NewString(),
		UserID:         recipient,
		Type:           notificationType,
		Title:          title,
		Message:        message,
		IsRead:         false,
		RedirectTo:     redirectTo,
		SenderID:       senderID,
		CreatedAt:      createdAt,
	}

	if err := ns.Dynamo.PutItem(ctx, models.NotificationsTable, notification); err != nil {
		return nil, fmt.Errorf("%w: notification sink: %v", ErrDependency, err)
	}
	return &notification, nil
}

// List returns the user's notifications newest-first, with the sender's
// public display fields attached where a sender is recorded.
func (ns *NotificationService) List(ctx context.Context, userID string, limit int32) ([]models.NotificationWithProfile, error) {
	if limit <= 0 || limit > notificationPageSize {
		limit = 50
	}

	keyCondition := "PK = :user"
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: models.NotificationPK(userID)},
	}

	items, err := ns.Dynamo.QueryItemsWithOptions(ctx, models.NotificationsTable, keyCondition, expressionValues, nil, limit, true)
	if err != nil {
		return nil, fmt.Errorf("%w: notification sink: %v", ErrDependency, err)
	}

	var notifications []models.Notification
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notifications: %w", err)
	}

	var senderIDs []string
	for _, n := range notifications {
		if n.SenderID != nil {
			senderIDs = append(senderIDs, *n.SenderID)
		}
	}
	senderProfiles, err := ns.Profiles.GetPublicProfiles(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.NotificationWithProfile, 0, len(notifications))
	for _, n := range notifications {
		entry := models.NotificationWithProfile{Notification: n}
		if n.SenderID != nil {
			entry.SenderProfile = senderProfiles[*n.SenderID]
		}
		enriched = append(enriched, entry)
	}
	return enriched, nil
}

// MarkRead flips one of the user's notifications to read. Re-marking an
// already-read notification is a no-op, not an error.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	notification, err := ns.findByID(ctx, userID, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.IsRead {
		return notification, nil
	}
	if err := ns.markItemRead(ctx, notification.PK, notification.SK); err != nil {
		return nil, err
	}
	notification.IsRead = true
	return notification, nil
}

// MarkAllRead flips every unread notification of the user and returns how
// many were newly marked. Calling it twice in a row returns zero the second
// time.
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	notifications, err := ns.queryAll(ctx, userID)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, n := range notifications {
		if n.IsRead {
			continue
		}
		if err := ns.markItemRead(ctx, n.PK, n.SK); err != nil {
			log.Printf("Failed to mark notification %s read: %v", n.NotificationID, err)
			return marked, err
		}
		marked++
	}
	return marked, nil
}

func (ns *NotificationService) findByID(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	notifications, err := ns.queryAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		if notifications[i].NotificationID == notificationID {
			return &notifications[i], nil
		}
	}
	return nil, fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
}

// queryAll walks the member's whole notification partition. MarkRead and
// MarkAllRead must see every record, so this follows the paging key rather
// than trusting one page to hold them all.
func (ns *NotificationService) queryAll(ctx context.Context, userID string) ([]models.Notification, error) {
	keyCondition := "PK = :user"
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: models.NotificationPK(userID)},
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		page, lastKey, err := ns.Dynamo.QueryItemsPaged(ctx, models.NotificationsTable, keyCondition, expressionValues, nil, notificationPageSize, startKey)
		if err != nil {
			return nil, fmt.Errorf("%w: notification sink: %v", ErrDependency, err)
		}
		items = append(items, page...)
		if len(lastKey) == 0 {
			break
		}
		startKey = lastKey
	}

	var notifications []models.Notification
	if err := attributevalue.UnmarshalListOfMaps(items, &notifications); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notifications: %w", err)
	}
	return notifications, nil
}

func (ns *NotificationService) markItemRead(ctx context.Context, pk, sk string) error {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
	updateExpression := "SET isRead = :true"
	expressionValues := map[string]types.AttributeValue{
		":true": &types.AttributeValueMemberBOOL{Value: true},
	}

	if _, err := ns.Dynamo.UpdateItem(ctx, models.NotificationsTable, updateExpression, key, expressionValues, nil); err != nil {
		return fmt.Errorf("%w: notification sink: %v", ErrDependency, err)
	}
	return nil
}
