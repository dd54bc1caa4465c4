package services

import (
	"context"
	"fmt"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

// viewBuilder joins recipes with their author, vote tallies and the viewer's
// own vote and saved flag.
type viewBuilder struct {
	profiles repositories.ProfileRepository
	votes    repositories.VoteRepository
	saved    repositories.SavedRecipeRepository
}

// build keeps the input order. tallies may be nil, in which case they are loaded.
func (b *viewBuilder) build(ctx context.Context, recipes []models.Recipe, viewerID string, tallies map[string]models.VoteTally) ([]models.RecipeView, error) {
	views := make([]models.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]string, 0, len(recipes))
	ownerSet := make(map[string]struct{})
	ownerIDs := make([]string, 0)
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		if _, ok := ownerSet[r.UserID]; !ok {
			ownerSet[r.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, r.UserID)
		}
	}

	profiles, err := b.profiles.GetProfilesByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	authors := make(map[string]models.ProfileCompact, len(profiles))
	for i := range profiles {
		authors[profiles[i].ID] = profiles[i].ToCompact()
	}

	if tallies == nil {
		tallies, err = b.votes.Tallies(ctx, recipeIDs)
		if err != nil {
			return nil, fmt.Errorf("load vote tallies: %w", err)
		}
	}

	myVotes, err := b.votes.UserVotes(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("load viewer votes: %w", err)
	}
	savedSet, err := b.saved.GetSavedSet(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("load saved flags: %w", err)
	}

	for _, r := range recipes {
		t := tallies[r.ID]
		author, ok := authors[r.UserID]
		if !ok {
			author = models.ProfileCompact{ID: r.UserID}
		}
		views = append(views, models.RecipeView{
			Recipe:    r,
			Author:    author,
			UpVotes:   t.Up,
			DownVotes: t.Down,
			VoteScore: t.Score(),
			UserVote:  myVotes[r.ID],
			IsSaved:   savedSet[r.ID],
		})
	}
	return views, nil
}
