package services

import (
	"context"
	"testing"

	"saathi_server/models"

	"github.com/stretchr/testify/require"
)

// testEnv wires every service against one shared in-memory store, the same
// way main wires them against DynamoDB.
type testEnv struct {
	db            *fakeDB
	profiles      *ProfileService
	notifications *NotificationService
	interests     *InterestService
	chat          *ChatService
	shortlist     *ShortlistService
	matches       *MatchService
}

func newTestEnv() *testEnv {
	db := newFakeDB()
	profiles := &ProfileService{
		Dynamo: db,
		PhotoURL: func(_ context.Context, key string) (string, error) {
			return "https://photos.test/" + key, nil
		},
	}
	notifications := &NotificationService{Dynamo: db, Profiles: profiles}
	return &testEnv{
		db:            db,
		profiles:      profiles,
		notifications: notifications,
		interests:     &InterestService{Dynamo: db, Profiles: profiles, Notifications: notifications},
		chat:          &ChatService{Dynamo: db, Profiles: profiles},
		shortlist:     &ShortlistService{Dynamo: db, Profiles: profiles},
		matches:       &MatchService{Dynamo: db, Profiles: profiles},
	}
}

func (e *testEnv) seedProfile(t *testing.T, profile models.MemberProfile) {
	t.Helper()
	require.NoError(t, e.db.PutItem(context.Background(), models.UserProfilesTable, profile))
}

func (e *testEnv) seedMember(t *testing.T, userID, name string) {
	t.Helper()
	e.seedProfile(t, models.MemberProfile{UserID: userID, Name: name})
}
