package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"saathi_server/models"
	"saathi_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ShortlistService maintains each member's bookmark set. The set lives in a
// DynamoDB string set, so add and remove are single atomic operations and two
// toggles racing on the same owner cannot lose an update.
type ShortlistService struct {
	Dynamo   DB
	Profiles *ProfileService
}

// Toggle removes target from owner's shortlist if present, otherwise adds it,
// and returns the resulting set. The presence check and the mutation are one
// conditional set operation, never a read-modify-write.
func (ss *ShortlistService) Toggle(ctx context.Context, owner, target string) ([]string, error) {
	if owner == "" || target == "" {
		return nil, fmt.Errorf("%w: owner and target are required", ErrValidation)
	}
	if owner == target {
		return nil, fmt.Errorf("%w: cannot shortlist yourself", ErrValidation)
	}
	if _, err := ss.Profiles.GetProfile(ctx, target); err != nil {
		return nil, err
	}

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.ShortlistPK(owner)},
	}
	setValue := &types.AttributeValueMemberSS{Value: []string{target}}

	// Remove-if-present first; a failed condition means the target was absent
	// and the flip becomes an add.
	attrs, err := ss.Dynamo.UpdateItemWithCondition(ctx, models.ShortlistsTable,
		"DELETE targets :t", "contains(targets, :target)", key,
		map[string]types.AttributeValue{
			":t":      setValue,
			":target": &types.AttributeValueMemberS{Value: target},
		}, nil)
	if err == nil {
		log.Printf("Shortlist: %s removed %s", owner, target)
		return sortedTargets(attrs), nil
	}
	if !IsConditionalCheckFailed(err) {
		return nil, fmt.Errorf("failed to update shortlist: %w", err)
	}

	attrs, err = ss.Dynamo.UpdateItem(ctx, models.ShortlistsTable,
		"SET ownerId = :owner ADD targets :t", key,
		map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner},
			":t":     setValue,
		}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update shortlist: %w", err)
	}

	log.Printf("Shortlist: %s added %s", owner, target)
	return sortedTargets(attrs), nil
}

// List returns the owner's shortlist expanded with each target's public
// display fields.
func (ss *ShortlistService) List(ctx context.Context, owner string) ([]models.PublicProfile, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.ShortlistPK(owner)},
	}

	item, err := ss.Dynamo.GetItem(ctx, models.ShortlistsTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shortlist: %w", err)
	}

	targets := utils.ExtractStringSet(item, "targets")
	sort.Strings(targets)

	profiles, err := ss.Profiles.GetPublicProfiles(ctx, targets)
	if err != nil {
		return nil, err
	}

	expanded := make([]models.PublicProfile, 0, len(targets))
	for _, target := range targets {
		if profile, ok := profiles[target]; ok {
			expanded = append(expanded, *profile)
		}
	}
	return expanded, nil
}

// ListShortlistedBy returns the owners whose shortlists contain target. This
// is computed by scanning ownership records, not kept as a separate reverse
// index.
func (ss *ShortlistService) ListShortlistedBy(ctx context.Context, target string) ([]string, error) {
	var shortlists []models.Shortlist
	err := ss.Dynamo.ScanWithFilter(ctx, models.ShortlistsTable, func(item map[string]types.AttributeValue) bool {
		for _, t := range utils.ExtractStringSet(item, "targets") {
			if t == target {
				return true
			}
		}
		return false
	}, &shortlists)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shortlists: %w", err)
	}

	owners := make([]string, 0, len(shortlists))
	for _, s := range shortlists {
		owners = append(owners, s.OwnerID)
	}
	sort.Strings(owners)
	return owners, nil
}

func sortedTargets(attrs map[string]types.AttributeValue) []string {
	targets := utils.ExtractStringSet(attrs, "targets")
	if targets == nil {
		return []string{}
	}
	sorted := append([]string(nil), targets...)
	sort.Strings(sorted)
	return sorted
}
