package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCreate_DefaultsToPublicAndRecordsActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := models.Identity{ID: "alice", Username: "alice"}
	rating := 8.5

	recipe, err := f.recipes.Create(ctx, id, &models.CreateRecipeRequest{
		RecipeName:   "V60 morning",
		Description:  "bright and clean #pourover",
		RecipeFields: models.RecipeFields{Rating: &rating, BrewMethod: strPtr("V60")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, recipe.ID)
	assert.Equal(t, "alice", recipe.UserID)
	assert.True(t, recipe.IsPublic)
	require.NotNil(t, recipe.Rating)
	assert.Equal(t, 8.5, *recipe.Rating)

	_, err = f.store.GetProfileByID(ctx, "alice")
	assert.NoError(t, err, "profile is created on first recipe")

	require.Len(t, f.store.Activities, 1)
	assert.Equal(t, models.ActivityRecipeCreated, f.store.Activities[0].ActivityType)
	assert.Equal(t, recipe.ID, f.store.Activities[0].RecipeID)
}

func TestCreate_Private(t *testing.T) {
	f := newFixture(t)
	private := false

	recipe, err := f.recipes.Create(context.Background(), models.Identity{ID: "alice"}, &models.CreateRecipeRequest{
		RecipeName:  "secret blend",
		Description: "not for you",
		IsPublic:    &private,
	})
	require.NoError(t, err)
	assert.False(t, recipe.IsPublic)
}

func TestGet_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddProfile("bob", "bob")
	f.store.AddRecipe("r1", "bob", true, at(1))
	f.store.AddVote("r1", "carol", models.VoteUp)

	first, err := f.recipes.Get(ctx, "r1", "alice")
	require.NoError(t, err)
	second, err := f.recipes.Get(ctx, "r1", "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, first.UpVotes)
	assert.Equal(t, "bob", first.Author.Username)
}

func TestGet_PrivateRecipeVisibleToOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddRecipe("secret", "bob", false, at(1))

	_, err := f.recipes.Get(ctx, "secret", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.recipes.Get(ctx, "secret", "")
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := f.recipes.Get(ctx, "secret", "bob")
	require.NoError(t, err)
	assert.Equal(t, "secret", view.ID)
	assert.Equal(t, "bob", view.Author.ID)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddRecipe("r1", "bob", true, at(1))

	_, err := f.recipes.Update(ctx, "r1", "alice", &models.UpdateRecipeRequest{RecipeName: strPtr("hijacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.recipes.Update(ctx, "r1", "bob", &models.UpdateRecipeRequest{
		RecipeName:   strPtr("renamed"),
		RecipeFields: models.RecipeFields{BrewingNotes: strPtr("#washed")},
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.RecipeName)
	assert.Equal(t, "description r1", updated.Description)

	stored, err := f.store.GetRecipeByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "bob", stored.UserID)
	assert.Equal(t, "renamed", stored.RecipeName)
	require.NotNil(t, stored.BrewingNotes)
	assert.Equal(t, "#washed", *stored.BrewingNotes)
}

func TestDelete_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddRecipe("r1", "bob", true, at(1))

	assert.ErrorIs(t, f.recipes.Delete(ctx, "r1", "alice"), ErrForbidden)
	require.NoError(t, f.recipes.Delete(ctx, "r1", "bob"))

	_, err := f.recipes.Get(ctx, "r1", "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.recipes.Delete(ctx, "r1", "bob"), ErrNotFound)
}

func TestDelete_RefreshesOwnerStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddRecipe("r1", "bob", true, at(1))

	before, err := f.profiles.Stats(ctx, "bob", "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, before.RecipesCount)

	require.NoError(t, f.recipes.Delete(ctx, "r1", "bob"))
	assert.False(t, f.cache.Has("user-stats:bob:true"))

	after, err := f.profiles.Stats(ctx, "bob", "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 0, after.RecipesCount)
}

func TestSearch_PublicOnly(t *testing.T) {
	f := newFixture(t)
	f.store.AddRecipe("r1", "bob", true, at(1))
	f.store.AddRecipe("r2", "bob", false, at(2))

	views, err := f.recipes.Search(context.Background(), "RECIPE", 0, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, viewIDs(views))
}

func TestByHashtag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.recipes.Create(ctx, models.Identity{ID: "bob"}, &models.CreateRecipeRequest{
		RecipeName: "kenya", Description: "juicy #Washed kenyan",
	})
	require.NoError(t, err)
	_, err = f.recipes.Create(ctx, models.Identity{ID: "bob"}, &models.CreateRecipeRequest{
		RecipeName: "natural", Description: "funky #natural",
	})
	require.NoError(t, err)

	page, err := f.recipes.ByHashtag(ctx, "#washed", 0, 0, "")
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "kenya", page.Recipes[0].RecipeName)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultFeedLimit, page.Limit)
}

func TestTrendingHashtags_Cached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.store.Hashtags = []models.Hashtag{
		{Tag: "washed", UsageCount: 2, LastUsed: now},
		{Tag: "natural", UsageCount: 5, LastUsed: now},
	}

	tags, err := f.recipes.TrendingHashtags(ctx, 0)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "natural", tags[0].Tag)

	again, err := f.recipes.TrendingHashtags(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, 1, f.store.Calls["Trending"])
	assert.Equal(t, trendingHashtagsTTL, f.cache.TTLs["trending-hashtags:10"])
}
