package services

import (
	"testing"
	"time"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/testutil"
)

type fixture struct {
	store *testutil.Store
	cache *testutil.MemoryCache

	activities *ActivityService
	profiles   *ProfileService
	recipes    *RecipeService
	social     *SocialService
	feed       *FeedService
	recs       *RecommendationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStore()
	c := testutil.NewMemoryCache()

	f := &fixture{store: s, cache: c}
	f.activities = NewActivityService(s, s, s)
	f.profiles = NewProfileService(s, s, s, s, s, c)
	f.recipes = NewRecipeService(s, s, s, s, s, f.profiles, f.activities, c)
	f.social = NewSocialService(s, s, s, s, f.profiles, f.activities)
	f.feed = NewFeedService(s, s, s, s, s)
	f.recs = NewRecommendationService(s, s, s, s)
	return f
}

// at returns a fixed instant offset from a base time, for seeding recipes.
func at(hours int) time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}

func viewIDs(views []models.RecipeView) []string {
	ids := make([]string, len(views))
	for i := range views {
		ids[i] = views[i].ID
	}
	return ids
}
