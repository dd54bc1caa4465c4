package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
)

func profileIDs(profiles []models.PublicProfile) []string {
	ids := make([]string, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].ID
	}
	return ids
}

func TestRankCoVoters(t *testing.T) {
	voters := []string{"b", "a", "c", "b", "a", "b", "self"}
	got := RankCoVoters(voters, map[string]bool{"self": true})
	assert.Equal(t, []string{"b", "a", "c"}, got)
	assert.Empty(t, RankCoVoters(nil, nil))
}

func TestRecommend_ColdStartReturnsOtherProfiles(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"me", "a", "b", "c"} {
		f.store.AddProfile(id, "user_"+id)
	}

	rec, err := f.recs.Recommend(context.Background(), "me", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, profileIDs(rec.Profiles))
	assert.Empty(t, rec.SimilarAuthors)
}

func TestRecommend_RanksCoVotersByOverlap(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"me", "author", "v1", "v2", "friend", "stranger"} {
		f.store.AddProfile(id, "user_"+id)
	}
	f.store.AddRecipe("r1", "author", true, at(1))
	f.store.AddRecipe("r2", "author", true, at(2))
	f.store.AddFollow("me", "friend")

	f.store.AddVote("r1", "me", models.VoteUp)
	f.store.AddVote("r2", "me", models.VoteUp)
	f.store.AddVote("r1", "v1", models.VoteUp)
	f.store.AddVote("r2", "v1", models.VoteUp)
	f.store.AddVote("r1", "v2", models.VoteUp)
	f.store.AddVote("r2", "friend", models.VoteUp)
	f.store.AddVote("r2", "stranger", models.VoteDown)

	rec, err := f.recs.Recommend(context.Background(), "me", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, profileIDs(rec.Profiles))
	assert.Equal(t, []string{"author"}, rec.SimilarAuthors)
}

func TestRecommend_PadsWithMostFollowed(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"me", "v1", "popular", "other"} {
		f.store.AddProfile(id, "user_"+id)
	}
	f.store.AddRecipe("r1", "other", true, at(1))
	f.store.AddVote("r1", "me", models.VoteUp)
	f.store.AddVote("r1", "v1", models.VoteUp)
	f.store.AddFollow("other", "popular")
	f.store.AddFollow("v1", "popular")

	rec, err := f.recs.Recommend(context.Background(), "me", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "popular"}, profileIDs(rec.Profiles))
}

func TestRecommend_NeverIncludesSelfOrFollowees(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"me", "friend", "x"} {
		f.store.AddProfile(id, "user_"+id)
	}
	f.store.AddFollow("me", "friend")
	f.store.AddFollow("x", "me")

	rec, err := f.recs.Recommend(context.Background(), "me", 5)
	require.NoError(t, err)
	assert.NotContains(t, profileIDs(rec.Profiles), "me")
	assert.NotContains(t, profileIDs(rec.Profiles), "friend")
	assert.Equal(t, []string{"x"}, profileIDs(rec.Profiles))
}

func TestRecommend_FolloweeFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.store.AddProfile("me", "me")
	f.store.AddProfile("a", "a")
	f.store.Fail["GetFollowingIDs"] = errors.New("db down")

	rec, err := f.recs.Recommend(context.Background(), "me", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, profileIDs(rec.Profiles))
}

func TestRecommend_RankingFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.store.AddProfile("me", "me")
	f.store.AddProfile("a", "a")
	f.store.Fail["UpVotedRecipeIDs"] = errors.New("db down")

	rec, err := f.recs.Recommend(context.Background(), "me", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, profileIDs(rec.Profiles))
}

func TestRecommend_FallbackFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("db down")
	f.store.Fail["ListProfiles"] = boom

	_, err := f.recs.Recommend(context.Background(), "me", 5)
	assert.ErrorIs(t, err, boom)
}
