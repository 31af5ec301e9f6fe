package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"saathi_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// InterestService owns the lifecycle of directed interests and their
// reconciliation into a mutual relationship.
//
// Pending uniqueness per ordered pair is enforced by a conditional guard-item
// put inside the same transaction as the interest record; the guard is removed
// in the same transaction as any transition out of pending. Mutual
// reconciliation updates both reciprocal records in one transaction, so a
// reader never observes a half-flipped pair.
type InterestService struct {
	Dynamo        DB
	Profiles      *ProfileService
	Notifications *NotificationService
}

// ExpressInterest creates a new pending interest from one member to another.
// A second pending interest for the same ordered pair is a conflict; an
// earlier declined or withdrawn outcome does not block a fresh proposal.
func (s *InterestService) ExpressInterest(ctx context.Context, fromUser, toUser string) (*models.Interest, error) {
	if fromUser == "" || toUser == "" {
		return nil, fmt.Errorf("%w: both members are required", ErrValidation)
	}
	if fromUser == toUser {
		return nil, fmt.Errorf("%w: cannot express interest in yourself", ErrValidation)
	}

	// The target must still be a resolvable member.
	if _, err := s.Profiles.GetProfile(ctx, toUser); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(models.TimestampFormat)
	interestID := uuid.NewString()

	interest := models.Interest{
		PK:         models.InterestPK(interestID),
		SK:         models.InterestSK,
		InterestID: interestID,
		FromUser:   fromUser,
		ToUser:     toUser,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	guard := models.PendingGuard{
		PK:         models.PendingGuardPK(fromUser),
		SK:         models.PendingGuardSK(toUser),
		InterestID: interestID,
		CreatedAt:  now,
	}

	interestItem, err := attributevalue.MarshalMap(interest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interest: %w", err)
	}
	guardItem, err := attributevalue.MarshalMap(guard)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pending guard: %w", err)
	}

	transaction := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(models.InterestsTable),
				Item:                guardItem,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		},
		{
			Put: &types.Put{
				TableName: aws.String(models.InterestsTable),
				Item:      interestItem,
			},
		},
	}

	if err := s.Dynamo.TransactWriteItems(ctx, transaction); err != nil {
		if TransactConditionFailed(err) {
			return nil, fmt.Errorf("%w: a pending interest from %s to %s already exists", ErrConflict, fromUser, toUser)
		}
		return nil, fmt.Errorf("failed to create interest: %w", err)
	}

	log.Printf("Interest created: %s -> %s (%s)", fromUser, toUser, interestID)
	return &interest, nil
}

// Respond applies the addressee's or sender's decision to a pending interest.
// The returned warning is non-empty when the interest transition committed but
// the follow-up notification could not be recorded; the transition is
// authoritative either way.
func (s *InterestService) Respond(ctx context.Context, interestID, actor, newStatus string) (*models.Interest, string, error) {
	interest, err := s.GetInterest(ctx, interestID)
	if err != nil {
		return nil, "", err
	}

	switch newStatus {
	case models.StatusAccepted, models.StatusDeclined:
		if actor != interest.ToUser {
			return nil, "", fmt.Errorf("%w: only the addressee may %s", ErrForbidden, newStatus)
		}
	case models.StatusWithdrawn:
		if actor != interest.FromUser {
			return nil, "", fmt.Errorf("%w: only the sender may withdraw", ErrForbidden)
		}
	default:
		return nil, "", fmt.Errorf("%w: unsupported status %q", ErrInvalidTransition, newStatus)
	}

	if interest.Status != models.StatusPending {
		return nil, "", fmt.Errorf("%w: interest is %s, not pending", ErrInvalidTransition, interest.Status)
	}

	if newStatus == models.StatusAccepted {
		return s.accept(ctx, interest)
	}

	// Declined and withdrawn are terminal and silent.
	if err := s.transitionPending(ctx, interest, newStatus); err != nil {
		return nil, "", err
	}
	interest.Status = newStatus
	return interest, "", nil
}

// GetInterest loads one interest record by id.
func (s *InterestService) GetInterest(ctx context.Context, interestID string) (*models.Interest, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.InterestPK(interestID)},
		"SK": &types.AttributeValueMemberS{Value: models.InterestSK},
	}

	item, err := s.Dynamo.GetItem(ctx, models.InterestsTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interest: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: interest %s", ErrNotFound, interestID)
	}

	var interest models.Interest
	if err := attributevalue.UnmarshalMap(item, &interest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interest: %w", err)
	}
	return &interest, nil
}

// ListSent returns every interest the user has expressed, newest first, with
// the addressee's public fields attached.
func (s *InterestService) ListSent(ctx context.Context, userID string) ([]models.InterestWithProfile, error) {
	interests, err := s.queryByIndex(ctx, models.FromUserIndex, "fromUser", userID)
	if err != nil {
		return nil, err
	}
	return s.attachProfiles(ctx, interests, func(i models.Interest) string { return i.ToUser })
}

// ListReceived returns every interest addressed to the user, newest first,
// with the sender's public fields attached.
func (s *InterestService) ListReceived(ctx context.Context, userID string) ([]models.InterestWithProfile, error) {
	interests, err := s.queryByIndex(ctx, models.ToUserIndex, "toUser", userID)
	if err != nil {
		return nil, err
	}
	return s.attachProfiles(ctx, interests, func(i models.Interest) string { return i.FromUser })
}

// accept flips a pending interest to accepted, or, when a live reciprocal
// record exists, flips both records to mutual in one transaction.
func (s *InterestService) accept(ctx context.Context, interest *models.Interest) (*models.Interest, string, error) {
	reciprocal, err := s.findReciprocal(ctx, interest)
	if err != nil {
		return nil, "", err
	}

	if reciprocal != nil {
		if err := s.reconcileMutual(ctx, interest, reciprocal); err != nil {
			return nil, "", err
		}
		interest.Status = models.StatusMutual
		log.Printf("Mutual match: %s <-> %s", interest.FromUser, interest.ToUser)
		// The relationship was already surfaced by the earlier accept, so no
		// second notification here.
		return interest, "", nil
	}

	if err := s.transitionPending(ctx, interest, models.StatusAccepted); err != nil {
		return nil, "", err
	}
	interest.Status = models.StatusAccepted

	warning := ""
	if err := s.notifyAccepted(ctx, interest); err != nil {
		// The accept is durable; emission failure must not roll it back.
		log.Printf("Interest %s accepted but notification failed: %v", interest.InterestID, err)
		warning = "interest accepted, but the notification could not be delivered"
	}
	return interest, warning, nil
}

// findReciprocal returns the latest interest for the reverse ordered pair
// whose status still qualifies for reconciliation (pending or accepted).
// Declined or withdrawn history never resurrects into a mutual match.
func (s *InterestService) findReciprocal(ctx context.Context, interest *models.Interest) (*models.Interest, error) {
	candidates, err := s.queryByIndex(ctx, models.FromUserIndex, "fromUser", interest.ToUser)
	if err != nil {
		return nil, err
	}

	var reciprocal *models.Interest
	for i := range candidates {
		c := &candidates[i]
		if c.ToUser != interest.FromUser {
			continue
		}
		if c.Status != models.StatusPending && c.Status != models.StatusAccepted {
			continue
		}
		if reciprocal == nil || c.CreatedAt > reciprocal.CreatedAt {
			reciprocal = c
		}
	}
	return reciprocal, nil
}

// reconcileMutual transitions both reciprocal records to mutual atomically
// and clears whichever pending guards are still standing.
func (s *InterestService) reconcileMutual(ctx context.Context, interest, reciprocal *models.Interest) error {
	now := time.Now().UTC().Format(models.TimestampFormat)

	transaction := []types.TransactWriteItem{
		interestStatusUpdate(interest, models.StatusMutual, models.StatusPending, now),
		interestStatusUpdate(reciprocal, models.StatusMutual, reciprocal.Status, now),
		pendingGuardDelete(interest.FromUser, interest.ToUser),
	}
	if reciprocal.Status == models.StatusPending {
		transaction = append(transaction, pendingGuardDelete(reciprocal.FromUser, reciprocal.ToUser))
	}

	if err := s.Dynamo.TransactWriteItems(ctx, transaction); err != nil {
		if TransactConditionFailed(err) {
			return fmt.Errorf("%w: interest changed concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("failed to reconcile mutual interest: %w", err)
	}
	return nil
}

// transitionPending moves a pending interest to newStatus and removes its
// pair guard in one transaction. The status condition makes concurrent
// responders race safely: exactly one wins, the rest see InvalidTransition.
func (s *InterestService) transitionPending(ctx context.Context, interest *models.Interest, newStatus string) error {
	now := time.Now().UTC().Format(models.TimestampFormat)

	transaction := []types.TransactWriteItem{
		interestStatusUpdate(interest, newStatus, models.StatusPending, now),
		pendingGuardDelete(interest.FromUser, interest.ToUser),
	}

	if err := s.Dynamo.TransactWriteItems(ctx, transaction); err != nil {
		if TransactConditionFailed(err) {
			return fmt.Errorf("%w: interest changed concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("failed to update interest: %w", err)
	}
	return nil
}

func (s *InterestService) notifyAccepted(ctx context.Context, interest *models.Interest) error {
	message := "Your interest was accepted. Start the conversation!"
	if profile, err := s.Profiles.GetPublicProfile(ctx, interest.ToUser); err == nil && profile.Name != "" {
		message = fmt.Sprintf("%s accepted your interest. Start the conversation!", profile.Name)
	}

	redirectTo := "/messages/" + interest.ToUser
	sender := interest.ToUser
	_, err := s.Notifications.Emit(ctx, interest.FromUser, models.NotificationInterestAccepted,
		"Interest accepted", message, &redirectTo, &sender)
	return err
}

func (s *InterestService) queryByIndex(ctx context.Context, indexName, attribute, userID string) ([]models.Interest, error) {
	keyCondition := fmt.Sprintf("%s = :user", attribute)
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryAllItemsWithIndex(ctx, models.InterestsTable, indexName, keyCondition, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query interests: %w", err)
	}

	var interests []models.Interest
	if err := attributevalue.UnmarshalListOfMaps(items, &interests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interests: %w", err)
	}

	sort.SliceStable(interests, func(i, j int) bool {
		return interests[i].CreatedAt > interests[j].CreatedAt
	})
	return interests, nil
}

func (s *InterestService) attachProfiles(ctx context.Context, interests []models.Interest, counterpart func(models.Interest) string) ([]models.InterestWithProfile, error) {
	ids := make([]string, 0, len(interests))
	for _, interest := range interests {
		ids = append(ids, counterpart(interest))
	}
	profiles, err := s.Profiles.GetPublicProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.InterestWithProfile, 0, len(interests))
	for _, interest := range interests {
		enriched = append(enriched, models.InterestWithProfile{
			Interest: interest,
			Profile:  profiles[counterpart(interest)],
		})
	}
	return enriched, nil
}

func interestStatusUpdate(interest *models.Interest, newStatus, expectedStatus, now string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(models.InterestsTable),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: models.InterestPK(interest.InterestID)},
				"SK": &types.AttributeValueMemberS{Value: models.InterestSK},
			},
			UpdateExpression:    aws.String("SET #status = :status, updatedAt = :now"),
			ConditionExpression: aws.String("#status = :expected"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status":   &types.AttributeValueMemberS{Value: newStatus},
				":now":      &types.AttributeValueMemberS{Value: now},
				":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			},
		},
	}
}

func pendingGuardDelete(fromUser, toUser string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(models.InterestsTable),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: models.PendingGuardPK(fromUser)},
				"SK": &types.AttributeValueMemberS{Value: models.PendingGuardSK(toUser)},
			},
		},
	}
}
