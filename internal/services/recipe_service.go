package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/whatsyourrecipe/backend/internal/cache"
	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

const (
	DefaultHashtagLimit = 10
	MaxHashtagLimit     = 50

	trendingHashtagsTTL = 60 * time.Second
)

// RecipeService handles recipe CRUD, search and hashtag lookups.
type RecipeService struct {
	recipes    repositories.RecipeRepository
	hashtags   repositories.HashtagRepository
	profiles   *ProfileService
	activities *ActivityService
	views      *viewBuilder
	cache      cache.Cache
}

func NewRecipeService(
	recipes repositories.RecipeRepository,
	hashtags repositories.HashtagRepository,
	profileRepo repositories.ProfileRepository,
	votes repositories.VoteRepository,
	saved repositories.SavedRecipeRepository,
	profiles *ProfileService,
	activities *ActivityService,
	c cache.Cache,
) *RecipeService {
	return &RecipeService{
		recipes:    recipes,
		hashtags:   hashtags,
		profiles:   profiles,
		activities: activities,
		views:      &viewBuilder{profiles: profileRepo, votes: votes, saved: saved},
		cache:      c,
	}
}

// Create stores a recipe owned by the caller and records a recipe_created activity.
func (s *RecipeService) Create(ctx context.Context, identity models.Identity, req *models.CreateRecipeRequest) (*models.Recipe, error) {
	if _, err := s.profiles.EnsureProfile(ctx, identity); err != nil {
		return nil, err
	}
	recipe := models.NewRecipe(identity.ID, req)
	if err := s.recipes.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	s.profiles.InvalidateStats(ctx, identity.ID)
	s.activities.Record(ctx, models.Activity{
		UserID:       identity.ID,
		ActivityType: models.ActivityRecipeCreated,
		Content:      "created a new recipe: " + recipe.RecipeName,
		RecipeID:     recipe.ID,
	})
	return recipe, nil
}

// visible loads a recipe and hides private recipes from everyone but the owner.
func (s *RecipeService) visible(ctx context.Context, id, viewerID string) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !recipe.VisibleTo(viewerID) {
		return nil, ErrNotFound
	}
	return recipe, nil
}

// Get returns a single recipe view. viewerID may be empty.
func (s *RecipeService) Get(ctx context.Context, id, viewerID string) (*models.RecipeView, error) {
	recipe, err := s.visible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	views, err := s.views.build(ctx, []models.Recipe{*recipe}, viewerID, nil)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update applies req to a recipe the caller owns.
func (s *RecipeService) Update(ctx context.Context, id, userID string, req *models.UpdateRecipeRequest) (*models.Recipe, error) {
	recipe, err := s.visible(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != userID {
		return nil, ErrForbidden
	}
	recipe.ApplyUpdate(req)
	if err := s.recipes.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	s.profiles.InvalidateStats(ctx, userID)
	return recipe, nil
}

func (s *RecipeService) Delete(ctx context.Context, id, userID string) error {
	recipe, err := s.visible(ctx, id, userID)
	if err != nil {
		return err
	}
	if recipe.UserID != userID {
		return ErrForbidden
	}
	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.profiles.InvalidateStats(ctx, userID)
	return nil
}

func (s *RecipeService) Search(ctx context.Context, query string, limit int, viewerID string) ([]models.RecipeView, error) {
	limit = clamp(limit, DefaultSearchLimit, MaxSearchLimit)
	recipes, err := s.recipes.SearchPublic(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return s.views.build(ctx, recipes, viewerID, nil)
}

// ByHashtag pages through public recipes mentioning #tag.
func (s *RecipeService) ByHashtag(ctx context.Context, tag string, page, limit int, viewerID string) (models.RecipePage, error) {
	page = clamp(page, 1, maxInt)
	limit = clamp(limit, DefaultFeedLimit, MaxFeedLimit)
	result := models.RecipePage{Recipes: []models.RecipeView{}, Page: page, Limit: limit}

	recipes, total, err := s.recipes.ListPublicByHashtag(ctx, tag, (page-1)*limit, limit)
	if err != nil {
		return result, fmt.Errorf("list by hashtag: %w", err)
	}
	views, err := s.views.build(ctx, recipes, viewerID, nil)
	if err != nil {
		return result, err
	}
	result.Recipes = views
	result.Total = total
	return result, nil
}

// TrendingHashtags returns the most used tags, cached briefly.
func (s *RecipeService) TrendingHashtags(ctx context.Context, limit int) ([]models.Hashtag, error) {
	limit = clamp(limit, DefaultHashtagLimit, MaxHashtagLimit)
	key := fmt.Sprintf("trending-hashtags:%d", limit)

	var cached []models.Hashtag
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	tags, err := s.hashtags.Trending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("trending hashtags: %w", err)
	}
	if err := s.cache.Set(ctx, key, tags, trendingHashtagsTTL); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("cache trending hashtags")
	}
	return tags, nil
}
