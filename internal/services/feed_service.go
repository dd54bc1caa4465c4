package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/whatsyourrecipe/backend/internal/metrics"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

const (
	DefaultFeedLimit    = 10
	MaxFeedLimit        = 50
	DefaultTrendingDays = 7
	MaxTrendingDays     = 365

	maxInt = math.MaxInt32
)

// FeedQuery selects one page of one feed view for a requester.
type FeedQuery struct {
	UserID       string
	Page         int
	Limit        int
	View         string
	TrendingDays int
}

// Normalize applies defaults and bounds. Unknown views become the default feed.
func (q FeedQuery) Normalize() FeedQuery {
	q.Page = clamp(q.Page, 1, maxInt)
	q.Limit = clamp(q.Limit, DefaultFeedLimit, MaxFeedLimit)
	q.TrendingDays = clamp(q.TrendingDays, DefaultTrendingDays, MaxTrendingDays)
	switch v := strings.ToLower(strings.TrimSpace(q.View)); v {
	case models.ViewFollowing, models.ViewSaved, models.ViewTrending:
		q.View = v
	default:
		q.View = models.ViewFeed
	}
	return q
}

// FeedService assembles recipe pages for the four feed views.
type FeedService struct {
	recipes repositories.RecipeRepository
	follows repositories.FollowRepository
	saved   repositories.SavedRecipeRepository
	votes   repositories.VoteRepository
	views   *viewBuilder
	now     func() time.Time
}

func NewFeedService(
	recipes repositories.RecipeRepository,
	follows repositories.FollowRepository,
	saved repositories.SavedRecipeRepository,
	votes repositories.VoteRepository,
	profiles repositories.ProfileRepository,
) *FeedService {
	return &FeedService{
		recipes: recipes,
		follows: follows,
		saved:   saved,
		votes:   votes,
		views:   &viewBuilder{profiles: profiles, votes: votes, saved: saved},
		now:     time.Now,
	}
}

// Assemble returns one page of the requested view. An error means an upstream
// store failed; an empty page with a nil error means there is nothing to show.
func (s *FeedService) Assemble(ctx context.Context, q FeedQuery) (models.RecipePage, error) {
	q = q.Normalize()
	start := time.Now()
	defer func() { metrics.RecordFeedAssembly(q.View, time.Since(start)) }()

	var (
		recipes []models.Recipe
		tallies map[string]models.VoteTally
		total   int64
		err     error
	)
	switch q.View {
	case models.ViewFollowing:
		recipes, total, err = s.following(ctx, q)
	case models.ViewSaved:
		recipes, total, err = s.savedRecipes(ctx, q)
	case models.ViewTrending:
		recipes, tallies, total, err = s.trending(ctx, q)
	default:
		recipes, total, err = s.mixed(ctx, q)
	}

	page := models.RecipePage{Recipes: []models.RecipeView{}, Page: q.Page, Limit: q.Limit, View: q.View}
	if err != nil {
		return page, fmt.Errorf("assemble %s feed: %w", q.View, err)
	}

	views, err := s.views.build(ctx, recipes, q.UserID, tallies)
	if err != nil {
		return page, fmt.Errorf("assemble %s feed: %w", q.View, err)
	}
	page.Recipes = views
	page.Total = total
	return page, nil
}

func (q FeedQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

func (s *FeedService) following(ctx context.Context, q FeedQuery) ([]models.Recipe, int64, error) {
	followees, err := s.follows.GetFollowingIDs(ctx, q.UserID)
	if err != nil {
		return nil, 0, err
	}
	if len(followees) == 0 {
		return nil, 0, nil
	}
	return s.recipes.ListPublicByOwners(ctx, followees, q.offset(), q.Limit)
}

func (s *FeedService) savedRecipes(ctx context.Context, q FeedQuery) ([]models.Recipe, int64, error) {
	ids, err := s.saved.GetSavedRecipeIDs(ctx, q.UserID)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, 0, nil
	}
	return s.recipes.ListVisibleByIDs(ctx, ids, q.UserID, q.offset(), q.Limit)
}

// trending ranks every public recipe in the lookback window by vote score.
// The score is computed here, so ordering and paging happen in memory.
func (s *FeedService) trending(ctx context.Context, q FeedQuery) ([]models.Recipe, map[string]models.VoteTally, int64, error) {
	since := s.now().Add(-time.Duration(q.TrendingDays) * 24 * time.Hour)
	candidates, err := s.recipes.ListPublicSince(ctx, since)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(candidates) == 0 {
		return nil, nil, 0, nil
	}

	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	tallies, err := s.votes.Tallies(ctx, ids)
	if err != nil {
		return nil, nil, 0, err
	}

	ranked := RankByScore(candidates, tallies)
	total := int64(len(ranked))
	return pageSlice(ranked, q.offset(), q.Limit), tallies, total, nil
}

// RankByScore sorts recipes by up minus down votes, highest first. Equal
// scores keep their input order.
func RankByScore(recipes []models.Recipe, tallies map[string]models.VoteTally) []models.Recipe {
	ranked := make([]models.Recipe, len(recipes))
	copy(ranked, recipes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return tallies[ranked[i].ID].Score() > tallies[ranked[j].ID].Score()
	})
	return ranked
}

func pageSlice(recipes []models.Recipe, offset, limit int) []models.Recipe {
	if offset >= len(recipes) {
		return nil
	}
	end := offset + limit
	if end > len(recipes) {
		end = len(recipes)
	}
	return recipes[offset:end]
}

// mixed fills ceil(limit/2) slots from followees and floor(limit/2) from all
// public recipes, then orders the union by creation time. A recipe may appear
// in both halves.
func (s *FeedService) mixed(ctx context.Context, q FeedQuery) ([]models.Recipe, int64, error) {
	followees, err := s.follows.GetFollowingIDs(ctx, q.UserID)
	if err != nil {
		return nil, 0, err
	}
	if len(followees) == 0 {
		return s.recipes.ListPublic(ctx, q.offset(), q.Limit)
	}

	followedLimit, publicLimit := SplitFeedLimit(q.Limit)

	followed, followedTotal, err := s.recipes.ListPublicByOwners(ctx, followees, (q.Page-1)*followedLimit, followedLimit)
	if err != nil {
		return nil, 0, err
	}

	var public []models.Recipe
	var publicTotal int64
	if publicLimit > 0 {
		public, publicTotal, err = s.recipes.ListPublic(ctx, (q.Page-1)*publicLimit, publicLimit)
		if err != nil {
			return nil, 0, err
		}
	}

	merged := make([]models.Recipe, 0, len(followed)+len(public))
	merged = append(merged, followed...)
	merged = append(merged, public...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	return merged, followedTotal + publicTotal, nil
}

// SplitFeedLimit returns the followee and public slot counts for a mixed feed.
func SplitFeedLimit(limit int) (followed, public int) {
	followed = (limit + 1) / 2
	return followed, limit / 2
}
