package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anonto42/whatsyourrecipe/backend/internal/cache"
	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50

	statsCacheTTL = 30 * time.Second
)

// ProfileService owns profile lifecycle, search, stats and avatars.
type ProfileService struct {
	profiles repositories.ProfileRepository
	recipes  repositories.RecipeRepository
	follows  repositories.FollowRepository
	votes    repositories.VoteRepository
	avatars  repositories.AvatarStore
	cache    cache.Cache
}

func NewProfileService(
	profiles repositories.ProfileRepository,
	recipes repositories.RecipeRepository,
	follows repositories.FollowRepository,
	votes repositories.VoteRepository,
	avatars repositories.AvatarStore,
	c cache.Cache,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		recipes:  recipes,
		follows:  follows,
		votes:    votes,
		avatars:  avatars,
		cache:    c,
	}
}

// DerivedUsername is the fallback username for an identity: "user_" plus the
// first eight characters of its id.
func DerivedUsername(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "user_" + id
}

// EnsureProfile returns the profile for identity, creating it on first use.
// Storage failures other than a lost race are logged and answered with an
// unpersisted profile so the caller can proceed.
func (s *ProfileService) EnsureProfile(ctx context.Context, identity models.Identity) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, identity.ID)
	if err == nil {
		return profile, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", identity.ID).Msg("profile lookup failed, using transient profile")
		return transientProfile(identity), nil
	}

	username := identity.Username
	if username == "" {
		username = DerivedUsername(identity.ID)
	}
	candidate := &models.Profile{
		ID:       identity.ID,
		Username: username,
		FullName: identity.FullName,
		Email:    identity.Email,
	}
	err = s.profiles.CreateProfile(ctx, candidate)
	if err == nil {
		return candidate, nil
	}

	if errors.Is(err, repositories.ErrConflict) {
		// A concurrent request may have created the row.
		if existing, getErr := s.profiles.GetProfileByID(ctx, identity.ID); getErr == nil {
			return existing, nil
		}
		// Otherwise the username is taken by someone else.
		if derived := DerivedUsername(identity.ID); candidate.Username != derived {
			candidate.Username = derived
			retryErr := s.profiles.CreateProfile(ctx, candidate)
			if retryErr == nil {
				return candidate, nil
			}
			err = retryErr
		}
	}

	logging.Ctx(ctx).Warn().Err(err).Str("user_id", identity.ID).Msg("profile creation failed, using transient profile")
	return transientProfile(identity), nil
}

func transientProfile(identity models.Identity) *models.Profile {
	username := identity.Username
	if username == "" {
		username = DerivedUsername(identity.ID)
	}
	now := time.Now().UTC()
	return &models.Profile{
		ID:        identity.ID,
		Username:  username,
		FullName:  identity.FullName,
		Email:     identity.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *ProfileService) GetPublicProfile(ctx context.Context, id string) (*models.PublicProfile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := profile.ToPublic()
	return &public, nil
}

// UpdateProfile applies the non-empty fields of req to the caller's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, identity models.Identity, req *models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}
	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) Search(ctx context.Context, query string, limit int) ([]models.PublicProfile, error) {
	limit = clamp(limit, DefaultSearchLimit, MaxSearchLimit)
	profiles, err := s.profiles.SearchProfiles(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	out := make([]models.PublicProfile, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].ToPublic())
	}
	return out, nil
}

// Stats counts followers, followees, recipes and up votes received. Private
// recipes are counted only when the viewer is the user.
func (s *ProfileService) Stats(ctx context.Context, userID, viewerID string) (*models.UserStats, error) {
	own := userID == viewerID
	key := statsKey(userID, own)

	var cached models.UserStats
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	stats := &models.UserStats{UserID: userID}
	var err error
	if stats.FollowersCount, err = s.follows.GetFollowersCount(ctx, userID); err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	if stats.FollowingCount, err = s.follows.GetFollowingCount(ctx, userID); err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	if stats.RecipesCount, err = s.recipes.CountByOwner(ctx, userID, own); err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	if stats.UpvotesReceived, err = s.votes.CountUpvotesReceived(ctx, userID); err != nil {
		return nil, fmt.Errorf("count upvotes: %w", err)
	}

	if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("cache user stats")
	}
	return stats, nil
}

func statsKey(userID string, own bool) string {
	return fmt.Sprintf("user-stats:%s:%t", userID, own)
}

// InvalidateStats drops the cached stats of every given user, for both the
// owner's and the public view.
func (s *ProfileService) InvalidateStats(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, 2*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, statsKey(id, true), statsKey(id, false))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Strs("user_ids", userIDs).Msg("invalidate user stats")
	}
}

// UploadAvatar stores the image and points the caller's profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, identity models.Identity, contentType string, r io.Reader) (string, error) {
	if _, err := s.EnsureProfile(ctx, identity); err != nil {
		return "", err
	}
	id, err := s.avatars.Upload(ctx, identity.ID, contentType, r)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	url := "/avatars/" + id
	if err := s.profiles.UpdateAvatarURL(ctx, identity.ID, url); err != nil {
		return "", fmt.Errorf("update avatar url: %w", err)
	}
	return url, nil
}

func (s *ProfileService) OpenAvatar(ctx context.Context, id string) (*repositories.Avatar, error) {
	return s.avatars.Open(ctx, id)
}
