package services

import (
	"context"
	"fmt"
	"log"

	"saathi_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ProfileService is the read-only view of the profile store. Profile CRUD
// lives in another service; this core only fetches members for eligibility
// checks, ranking, and public-field projection.
type ProfileService struct {
	Dynamo DB

	// PhotoURL resolves a stored photo key to a fetchable URL. Left nil it
	// uses the S3 presigner; tests substitute a stub.
	PhotoURL func(ctx context.Context, key string) (string, error)
}

// GetProfile retrieves the full member record for userID.
func (ps *ProfileService) GetProfile(ctx context.Context, userID string) (*models.MemberProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ps.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, fmt.Errorf("%w: profile store: %v", ErrDependency, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: member %s", ErrNotFound, userID)
	}

	var profile models.MemberProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// GetPublicProfile retrieves the display-field projection for userID.
func (ps *ProfileService) GetPublicProfile(ctx context.Context, userID string) (*models.PublicProfile, error) {
	profile, err := ps.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ps.Project(ctx, profile), nil
}

// Project copies the member's display fields into a PublicProfile. Private
// fields never cross this boundary; the copy is field-by-field on purpose.
func (ps *ProfileService) Project(ctx context.Context, profile *models.MemberProfile) *models.PublicProfile {
	public := &models.PublicProfile{
		UserID:         profile.UserID,
		Name:           profile.Name,
		DOB:            profile.DOB,
		City:           profile.City,
		Occupation:     profile.Occupation,
		Religion:       profile.Religion,
		MembershipTier: profile.MembershipTier,
	}

	if profile.PhotoKey != "" {
		resolve := ps.PhotoURL
		if resolve == nil {
			resolve = GenerateReadURL
		}
		url, err := resolve(ctx, profile.PhotoKey)
		if err != nil {
			// A missing photo URL is cosmetic; the projection still ships.
			log.Printf("Failed to presign photo for %s: %v", profile.UserID, err)
		} else {
			public.PhotoURL = url
		}
	}

	return public
}

// GetPublicProfiles fetches projections for a batch of member ids. Members
// that no longer resolve are skipped rather than failing the whole listing.
func (ps *ProfileService) GetPublicProfiles(ctx context.Context, userIDs []string) (map[string]*models.PublicProfile, error) {
	profiles := make(map[string]*models.PublicProfile, len(userIDs))
	for _, userID := range userIDs {
		if _, done := profiles[userID]; done {
			continue
		}
		public, err := ps.GetPublicProfile(ctx, userID)
		if err != nil {
			log.Printf("Skipping profile %s in listing: %v", userID, err)
			continue
		}
		profiles[userID] = public
	}
	return profiles, nil
}
