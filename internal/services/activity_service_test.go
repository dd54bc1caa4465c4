package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
)

func TestActivityFeed_SelfAndFollowees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddProfile("bob", "bobby")
	f.store.AddFollow("alice", "bob")

	f.activities.Record(ctx, models.Activity{UserID: "alice", ActivityType: models.ActivityRecipeCreated, Content: "mine"})
	f.activities.Record(ctx, models.Activity{UserID: "bob", ActivityType: models.ActivityRecipeSaved, Content: "followee"})
	f.activities.Record(ctx, models.Activity{UserID: "carol", ActivityType: models.ActivityRecipeCreated, Content: "stranger"})

	feed, err := f.activities.Feed(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "followee", feed[0].Content)
	assert.Equal(t, "bobby", feed[0].Actor.Username)
	assert.Equal(t, "mine", feed[1].Content)
	assert.Equal(t, "alice", feed[1].Actor.ID)
}

func TestActivityFeed_Limit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.activities.Record(ctx, models.Activity{UserID: "alice", ActivityType: models.ActivityRecipeCreated})
	}

	feed, err := f.activities.Feed(ctx, "alice", 3)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestActivityFeed_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t)

	feed, err := f.activities.Feed(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestActivityFeed_StoreFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("mongo down")
	f.store.Fail["ListByActors"] = boom

	_, err := f.activities.Feed(context.Background(), "alice", 10)
	assert.ErrorIs(t, err, boom)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 10, clamp(0, 10, 50))
	assert.Equal(t, 10, clamp(-3, 10, 50))
	assert.Equal(t, 50, clamp(99, 10, 50))
	assert.Equal(t, 7, clamp(7, 10, 50))
}
