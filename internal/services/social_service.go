package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/whatsyourrecipe/backend/internal/metrics"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

// Toggle outcome messages.
const (
	MsgVoteCast    = "Vote cast"
	MsgVoteUpdated = "Vote updated"
	MsgVoteRemoved = "Vote removed"
	MsgFollowing   = "Following"
	MsgUnfollowed  = "Unfollowed"
	MsgSaved       = "Recipe saved"
	MsgUnsaved     = "Recipe unsaved"
)

type VoteResult struct {
	Message string       `json:"message"`
	Vote    *models.Vote `json:"vote,omitempty"`
}

type FollowResult struct {
	Message   string `json:"message"`
	Following bool   `json:"following"`
}

type SaveResult struct {
	Message string `json:"message"`
	Saved   bool   `json:"saved"`
}

// SocialService toggles votes, follows and saved recipes. Each toggle is a
// single read followed by one write; a concurrent duplicate insert surfaces as
// ErrConflict from the unique constraint.
type SocialService struct {
	recipes    repositories.RecipeRepository
	votes      repositories.VoteRepository
	follows    repositories.FollowRepository
	saved      repositories.SavedRecipeRepository
	profiles   *ProfileService
	activities *ActivityService
}

func NewSocialService(
	recipes repositories.RecipeRepository,
	votes repositories.VoteRepository,
	follows repositories.FollowRepository,
	saved repositories.SavedRecipeRepository,
	profiles *ProfileService,
	activities *ActivityService,
) *SocialService {
	return &SocialService{
		recipes:    recipes,
		votes:      votes,
		follows:    follows,
		saved:      saved,
		profiles:   profiles,
		activities: activities,
	}
}

func (s *SocialService) visibleRecipe(ctx context.Context, recipeID, userID string) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !recipe.VisibleTo(userID) {
		return nil, ErrNotFound
	}
	return recipe, nil
}

// ToggleVote casts, switches or withdraws the caller's vote on a recipe.
func (s *SocialService) ToggleVote(ctx context.Context, userID string, req *models.VoteRequest) (*VoteResult, error) {
	recipe, err := s.visibleRecipe(ctx, req.RecipeID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.votes.GetVote(ctx, req.RecipeID, userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		vote := &models.Vote{RecipeID: req.RecipeID, UserID: userID, VoteType: req.VoteType}
		if err := s.votes.CreateVote(ctx, vote); err != nil {
			return nil, s.toggleFailed("vote", err)
		}
		metrics.RecordToggle("vote", "created")
		s.profiles.InvalidateStats(ctx, recipe.UserID)
		s.recordUpvote(ctx, userID, recipe, vote.VoteType)
		return &VoteResult{Message: MsgVoteCast, Vote: vote}, nil

	case err != nil:
		return nil, fmt.Errorf("load vote: %w", err)

	case existing.VoteType == req.VoteType:
		if err := s.votes.DeleteVote(ctx, existing.ID); err != nil {
			return nil, s.toggleFailed("vote", err)
		}
		metrics.RecordToggle("vote", "removed")
		s.profiles.InvalidateStats(ctx, recipe.UserID)
		return &VoteResult{Message: MsgVoteRemoved}, nil

	default:
		if err := s.votes.UpdateVoteType(ctx, existing.ID, req.VoteType); err != nil {
			return nil, s.toggleFailed("vote", err)
		}
		existing.VoteType = req.VoteType
		metrics.RecordToggle("vote", "updated")
		s.profiles.InvalidateStats(ctx, recipe.UserID)
		s.recordUpvote(ctx, userID, recipe, existing.VoteType)
		return &VoteResult{Message: MsgVoteUpdated, Vote: existing}, nil
	}
}

func (s *SocialService) recordUpvote(ctx context.Context, userID string, recipe *models.Recipe, voteType string) {
	if voteType != models.VoteUp {
		return
	}
	s.activities.Record(ctx, models.Activity{
		UserID:       userID,
		ActivityType: models.ActivityRecipeUpvoted,
		Content:      "upvoted " + recipe.RecipeName,
		RecipeID:     recipe.ID,
		TargetUserID: recipe.UserID,
	})
}

// ToggleFollow follows targetID, or unfollows when already following.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, targetID string) (*FollowResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	following, err := s.follows.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("load follow: %w", err)
	}
	if following {
		if err := s.follows.DeleteFollow(ctx, followerID, targetID); err != nil {
			return nil, s.toggleFailed("follow", err)
		}
		metrics.RecordToggle("follow", "removed")
		s.profiles.InvalidateStats(ctx, followerID, targetID)
		return &FollowResult{Message: MsgUnfollowed, Following: false}, nil
	}

	if err := s.follows.CreateFollow(ctx, &models.Follow{FollowerID: followerID, FollowingID: targetID}); err != nil {
		return nil, s.toggleFailed("follow", err)
	}
	metrics.RecordToggle("follow", "created")
	s.profiles.InvalidateStats(ctx, followerID, targetID)
	s.activities.Record(ctx, models.Activity{
		UserID:       followerID,
		ActivityType: models.ActivityUserFollowed,
		Content:      "started following a user",
		TargetUserID: targetID,
	})
	return &FollowResult{Message: MsgFollowing, Following: true}, nil
}

func (s *SocialService) FollowStatus(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == targetID {
		return false, nil
	}
	return s.follows.IsFollowing(ctx, followerID, targetID)
}

// ToggleSave bookmarks a visible recipe, or removes the bookmark.
func (s *SocialService) ToggleSave(ctx context.Context, userID, recipeID string) (*SaveResult, error) {
	recipe, err := s.visibleRecipe(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}

	saved, err := s.saved.IsRecipeSaved(ctx, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load saved recipe: %w", err)
	}
	if saved {
		if err := s.saved.UnsaveRecipe(ctx, userID, recipeID); err != nil {
			return nil, s.toggleFailed("save", err)
		}
		metrics.RecordToggle("save", "removed")
		return &SaveResult{Message: MsgUnsaved, Saved: false}, nil
	}

	if err := s.saved.SaveRecipe(ctx, &models.SavedRecipe{UserID: userID, RecipeID: recipeID}); err != nil {
		return nil, s.toggleFailed("save", err)
	}
	metrics.RecordToggle("save", "created")
	s.activities.Record(ctx, models.Activity{
		UserID:       userID,
		ActivityType: models.ActivityRecipeSaved,
		Content:      "saved " + recipe.RecipeName,
		RecipeID:     recipe.ID,
	})
	return &SaveResult{Message: MsgSaved, Saved: true}, nil
}

func (s *SocialService) SaveStatus(ctx context.Context, userID, recipeID string) (bool, error) {
	return s.saved.IsRecipeSaved(ctx, userID, recipeID)
}

// toggleFailed counts lost races and passes the error through. ErrConflict
// and ErrNotFound are returned unwrapped so callers can map them.
func (s *SocialService) toggleFailed(edge string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrConflict):
		metrics.RecordToggle(edge, "conflict")
		return ErrConflict
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("toggle %s: %w", edge, err)
	}
}
