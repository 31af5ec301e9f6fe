package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"saathi_server/models"
	"saathi_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 200
)

// ChatService owns the one-conversation-per-pair ledger and the ordered
// message history inside each conversation.
type ChatService struct {
	Dynamo   DB
	Profiles *ProfileService
}

// GetOrCreateConversation resolves the single conversation for the unordered
// pair {a, b}, creating it if this is the first contact. The whole operation
// is one if_not_exists upsert on the canonical pair key, so two first
// messages racing each other still settle on one record.
func (cs *ChatService) GetOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	if a == "" || b == "" {
		return nil, fmt.Errorf("%w: both participants are required", ErrValidation)
	}
	if a == b {
		return nil, fmt.Errorf("%w: cannot open a conversation with yourself", ErrValidation)
	}

	participantA, participantB := a, b
	if participantB < participantA {
		participantA, participantB = participantB, participantA
	}

	key := map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: utils.PairKey(a, b)},
	}
	updateExpression := "SET conversationId = if_not_exists(conversationId, :id), " +
		"participantA = if_not_exists(participantA, :a), " +
		"participantB = if_not_exists(participantB, :b), " +
		"createdAt = if_not_exists(createdAt, :now)"
	expressionValues := map[string]types.AttributeValue{
		":id":  &types.AttributeValueMemberS{Value: uuid.NewString()},
		":a":   &types.AttributeValueMemberS{Value: participantA},
		":b":   &types.AttributeValueMemberS{Value: participantB},
		":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(models.TimestampFormat)},
	}

	attrs, err := cs.Dynamo.UpdateItem(ctx, models.ConversationsTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conversation: %w", err)
	}

	var conversation models.Conversation
	if err := attributevalue.UnmarshalMap(attrs, &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	conversation.PairKey = utils.PairKey(a, b)
	return &conversation, nil
}

// SendMessage appends a message from sender to the pair's conversation,
// creating the conversation lazily on first contact. The message put and the
// lastMessage cache update ride in one transaction; if a concurrent send with
// a later timestamp already owns the cache, the message alone is appended so
// the cache never moves backwards.
func (cs *ChatService) SendMessage(ctx context.Context, sender, otherUser, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrValidation)
	}

	conversation, err := cs.GetOrCreateConversation(ctx, sender, otherUser)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(sender) {
		return nil, fmt.Errorf("%w: sender is not a participant", ErrForbidden)
	}

	createdAt := time.Now().UTC().Format(models.TimestampFormat)
	message := models.Message{
		PairKey:     conversation.PairKey,
		MessageSort: models.MessageSortKey(createdAt, uuid.NewString()),
		MessageID:   uuid.NewString(),
		SenderID:    sender,
		Text:        text,
		Status:      models.MessageStatusSent,
		CreatedAt:   createdAt,
	}
	messageItem, err := attributevalue.MarshalMap(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	transaction := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName: aws.String(models.MessagesTable),
				Item:      messageItem,
			},
		},
		{
			Update: &types.Update{
				TableName: aws.String(models.ConversationsTable),
				Key: map[string]types.AttributeValue{
					"pairKey": &types.AttributeValueMemberS{Value: conversation.PairKey},
				},
				UpdateExpression:    aws.String("SET lastMessageText = :text, lastMessageSender = :sender, lastMessageAt = :ts"),
				ConditionExpression: aws.String("attribute_not_exists(lastMessageAt) OR lastMessageAt <= :ts"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":text":   &types.AttributeValueMemberS{Value: text},
					":sender": &types.AttributeValueMemberS{Value: sender},
					":ts":     &types.AttributeValueMemberS{Value: createdAt},
				},
			},
		},
	}

	if err := cs.Dynamo.TransactWriteItems(ctx, transaction); err != nil {
		if !TransactConditionFailed(err) {
			return nil, fmt.Errorf("failed to store message: %w", err)
		}
		// A newer message already owns the lastMessage cache. The history
		// still gets this message; only the cache write is skipped.
		log.Printf("lastMessage cache already ahead of %s; appending message only", message.MessageID)
		if err := cs.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
			return nil, fmt.Errorf("failed to store message: %w", err)
		}
	}

	return &message, nil
}

// GetMessages returns one page of the conversation's messages in creation
// order, plus an opaque cursor to resume from. No conversation yet means an
// empty page, not an error.
func (cs *ChatService) GetMessages(ctx context.Context, user, otherUser string, limit int32, cursor string) ([]models.Message, string, error) {
	if user == otherUser {
		return nil, "", fmt.Errorf("%w: two distinct members are required", ErrValidation)
	}
	if limit <= 0 || limit > maxMessagePageSize {
		limit = defaultMessagePageSize
	}

	pairKey := utils.PairKey(user, otherUser)
	keyCondition := "pairKey = :pair"
	expressionValues := map[string]types.AttributeValue{
		":pair": &types.AttributeValueMemberS{Value: pairKey},
	}

	var startKey map[string]types.AttributeValue
	if cursor != "" {
		startKey = map[string]types.AttributeValue{
			"pairKey":     &types.AttributeValueMemberS{Value: pairKey},
			"messageSort": &types.AttributeValueMemberS{Value: cursor},
		}
	}

	items, lastKey, err := cs.Dynamo.QueryItemsPaged(ctx, models.MessagesTable, keyCondition, expressionValues, nil, limit, startKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := []models.Message{}
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal messages: %w", err)
	}

	nextCursor := ""
	if len(lastKey) > 0 {
		nextCursor = utils.ExtractString(lastKey, "messageSort")
	}
	return messages, nextCursor, nil
}

// ListConversations returns the user's conversations with the other
// participant's public fields and the cached last message, most recently
// active first. Conversations that never carried a message sort last.
func (cs *ChatService) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	conversations, err := cs.queryParticipantIndex(ctx, models.ParticipantAIndex, "participantA", userID)
	if err != nil {
		return nil, err
	}
	asB, err := cs.queryParticipantIndex(ctx, models.ParticipantBIndex, "participantB", userID)
	if err != nil {
		return nil, err
	}
	conversations = append(conversations, asB...)

	otherIDs := make([]string, 0, len(conversations))
	for _, c := range conversations {
		otherIDs = append(otherIDs, c.OtherParticipant(userID))
	}
	profiles, err := cs.Profiles.GetPublicProfiles(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summaries = append(summaries, models.ConversationSummary{
			Conversation: c,
			OtherProfile: profiles[c.OtherParticipant(userID)],
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a > b
	})
	return summaries, nil
}

func (cs *ChatService) queryParticipantIndex(ctx context.Context, indexName, attribute, userID string) ([]models.Conversation, error) {
	keyCondition := fmt.Sprintf("%s = :user", attribute)
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := cs.Dynamo.QueryAllItemsWithIndex(ctx, models.ConversationsTable, indexName, keyCondition, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}

	var conversations []models.Conversation
	if err := attributevalue.UnmarshalListOfMaps(items, &conversations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversations: %w", err)
	}
	return conversations, nil
}
