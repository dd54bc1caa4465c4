package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

const (
	DefaultRecommendations = 5
	MaxRecommendations     = 20
)

// RecommendationService suggests accounts to follow.
type RecommendationService struct {
	votes    repositories.VoteRepository
	recipes  repositories.RecipeRepository
	follows  repositories.FollowRepository
	profiles repositories.ProfileRepository
}

func NewRecommendationService(
	votes repositories.VoteRepository,
	recipes repositories.RecipeRepository,
	follows repositories.FollowRepository,
	profiles repositories.ProfileRepository,
) *RecommendationService {
	return &RecommendationService{votes: votes, recipes: recipes, follows: follows, profiles: profiles}
}

// Recommend ranks identities that up-voted the same recipes as userID, pads
// with the most followed identities and falls back to arbitrary profiles.
// Only a failure of that last fallback is returned.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, n int) (models.Recommendation, error) {
	n = clamp(n, DefaultRecommendations, MaxRecommendations)
	result := models.Recommendation{Profiles: []models.PublicProfile{}, SimilarAuthors: []string{}}

	followees, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("recommendations: load followees")
		return s.arbitrary(ctx, result, []string{userID}, n)
	}
	excluded := append([]string{userID}, followees...)

	ranked, similar, err := s.ranked(ctx, userID, excluded, n)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("recommendations: ranking failed, using fallback")
		return s.arbitrary(ctx, result, excluded, n)
	}
	result.SimilarAuthors = similar

	if len(ranked) > 0 {
		profiles, err := s.profilesInOrder(ctx, ranked)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("recommendations: load profiles")
			return s.arbitrary(ctx, result, excluded, n)
		}
		result.Profiles = profiles
	}
	if len(result.Profiles) == 0 {
		return s.arbitrary(ctx, result, excluded, n)
	}
	return result, nil
}

// ranked returns up to n candidate ids: co-voters by frequency, then the most
// followed identities. It also returns the authors of the up-voted recipes.
func (s *RecommendationService) ranked(ctx context.Context, userID string, excluded []string, n int) ([]string, []string, error) {
	upvoted, err := s.votes.UpVotedRecipeIDs(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load upvoted recipes: %w", err)
	}

	similar, err := s.recipes.OwnerIDs(ctx, upvoted)
	if err != nil {
		return nil, nil, fmt.Errorf("load similar authors: %w", err)
	}
	similar = without(similar, map[string]bool{userID: true})

	voters, err := s.votes.UpVoterIDs(ctx, upvoted)
	if err != nil {
		return nil, nil, fmt.Errorf("load co-voters: %w", err)
	}

	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	selected := RankCoVoters(voters, skip)
	if len(selected) > n {
		selected = selected[:n]
	}

	if len(selected) < n {
		for _, id := range selected {
			skip[id] = true
		}
		exclude := make([]string, 0, len(skip))
		for id := range skip {
			exclude = append(exclude, id)
		}
		sort.Strings(exclude)
		popular, err := s.follows.MostFollowed(ctx, exclude, n-len(selected))
		if err != nil {
			return nil, nil, fmt.Errorf("load popular identities: %w", err)
		}
		for _, p := range popular {
			if !skip[p.UserID] {
				selected = append(selected, p.UserID)
				skip[p.UserID] = true
			}
		}
	}
	return selected, similar, nil
}

// RankCoVoters counts how often each voter appears and orders voters by that
// count, highest first, breaking ties by id. Ids in skip are dropped.
func RankCoVoters(voters []string, skip map[string]bool) []string {
	freq := make(map[string]int)
	for _, v := range voters {
		if !skip[v] {
			freq[v]++
		}
	}
	ids := make([]string, 0, len(freq))
	for id := range freq {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if freq[ids[i]] != freq[ids[j]] {
			return freq[ids[i]] > freq[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (s *RecommendationService) profilesInOrder(ctx context.Context, ids []string) ([]models.PublicProfile, error) {
	profiles, err := s.profiles.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}
	out := make([]models.PublicProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p.ToPublic())
		}
	}
	return out, nil
}

func (s *RecommendationService) arbitrary(ctx context.Context, result models.Recommendation, excluded []string, n int) (models.Recommendation, error) {
	profiles, err := s.profiles.ListProfiles(ctx, excluded, n)
	if err != nil {
		return result, fmt.Errorf("list fallback profiles: %w", err)
	}
	result.Profiles = make([]models.PublicProfile, 0, len(profiles))
	for i := range profiles {
		result.Profiles = append(result.Profiles, profiles[i].ToPublic())
	}
	return result, nil
}

func without(ids []string, drop map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}
