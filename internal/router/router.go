package router

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/anonto42/whatsyourrecipe/backend/internal/cache"
	"github.com/anonto42/whatsyourrecipe/backend/internal/handlers"
	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
)

// Repositories bundles every storage dependency the services need.
type Repositories struct {
	Accounts   repositories.AccountRepository
	Profiles   repositories.ProfileRepository
	Recipes    repositories.RecipeRepository
	Votes      repositories.VoteRepository
	Follows    repositories.FollowRepository
	Saved      repositories.SavedRecipeRepository
	Hashtags   repositories.HashtagRepository
	Activities repositories.ActivityRepository
	Avatars    repositories.AvatarStore
}

// NewRepositories builds the PostgreSQL repositories and, when mdb is not nil,
// the MongoDB activity log and avatar store.
func NewRepositories(ctx context.Context, pg *gorm.DB, mdb *mongo.Database) (Repositories, error) {
	repos := Repositories{
		Accounts:   repositories.NewPostgresAccountRepository(pg),
		Profiles:   repositories.NewPostgresProfileRepository(pg),
		Recipes:    repositories.NewPostgresRecipeRepository(pg),
		Votes:      repositories.NewPostgresVoteRepository(pg),
		Follows:    repositories.NewPostgresFollowRepository(pg),
		Saved:      repositories.NewPostgresSavedRecipeRepository(pg),
		Hashtags:   repositories.NewPostgresHashtagRepository(pg),
		Activities: repositories.NopActivityRepository{},
		Avatars:    repositories.NopAvatarStore{},
	}
	if mdb == nil {
		return repos, nil
	}

	activities := repositories.NewMongoActivityRepository(mdb)
	if err := activities.EnsureIndexes(ctx); err != nil {
		return Repositories{}, fmt.Errorf("activity indexes: %w", err)
	}
	avatars, err := repositories.NewGridFSAvatarStore(mdb)
	if err != nil {
		return Repositories{}, fmt.Errorf("avatar store: %w", err)
	}
	repos.Activities = activities
	repos.Avatars = avatars
	return repos, nil
}

// Options carries everything SetupRoutes wires into the handlers.
type Options struct {
	Repos       Repositories
	Cache       cache.Cache
	Firebase    services.FirebaseVerifier
	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	AuthLimiter echo.MiddlewareFunc
	Health      handlers.HealthInfo
	Probe       handlers.DatabaseProbe
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, opts Options) {
	c := opts.Cache
	if c == nil {
		c = cache.Nop{}
	}
	r := opts.Repos

	// --- Services ---
	activities := services.NewActivityService(r.Activities, r.Follows, r.Profiles)
	profiles := services.NewProfileService(r.Profiles, r.Recipes, r.Follows, r.Votes, r.Avatars, c)
	recipes := services.NewRecipeService(r.Recipes, r.Hashtags, r.Profiles, r.Votes, r.Saved, profiles, activities, c)
	social := services.NewSocialService(r.Recipes, r.Votes, r.Follows, r.Saved, profiles, activities)
	feed := services.NewFeedService(r.Recipes, r.Follows, r.Saved, r.Votes, r.Profiles)
	recs := services.NewRecommendationService(r.Votes, r.Recipes, r.Follows, r.Profiles)
	tokens := services.NewTokenManager(opts.JWTSecret, opts.AccessTTL, opts.RefreshTTL)
	auth := services.NewAuthService(r.Accounts, tokens, opts.Firebase, c)

	guard := handlers.Guards{
		Require:  middleware.RequireAuth(auth),
		Optional: middleware.OptionalAuth(auth),
	}

	// Health check - always accessible
	handlers.NewHealthHandler(opts.Health, opts.Probe).RegisterHealthRoutes(e)

	// --- Authentication ---
	var authGroup *echo.Group
	if opts.AuthLimiter != nil {
		authGroup = e.Group("/auth", opts.AuthLimiter)
	} else {
		authGroup = e.Group("/auth")
	}
	handlers.NewAuthHandler(auth).RegisterAuthRoutes(authGroup, guard)

	api := e.Group("")
	handlers.NewUserHandler(profiles).RegisterProfileRoutes(api, guard)
	handlers.NewFeedHandler(feed).RegisterFeedRoutes(api, guard)
	handlers.NewRecipeHandler(recipes).RegisterRecipeRoutes(api, guard)
	handlers.NewVoteHandler(social).RegisterVoteRoutes(api, guard)
	handlers.NewFollowHandler(social, recs).RegisterFollowRoutes(api, guard)
	handlers.NewSavedRecipeHandler(social).RegisterSavedRecipeRoutes(api, guard)
	handlers.NewActivityHandler(activities).RegisterActivityRoutes(api, guard)

	logging.Info().Int("routes", len(e.Routes())).Msg("All routes configured.")
}
