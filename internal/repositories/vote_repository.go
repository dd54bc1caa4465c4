package repositories

import (
	"context"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"gorm.io/gorm"
)

// VoteRepository defines the interface for recipe vote operations
type VoteRepository interface {
	GetVote(ctx context.Context, recipeID, userID string) (*models.Vote, error)
	CreateVote(ctx context.Context, vote *models.Vote) error
	UpdateVoteType(ctx context.Context, id, voteType string) error
	DeleteVote(ctx context.Context, id string) error
	Tallies(ctx context.Context, recipeIDs []string) (map[string]models.VoteTally, error)
	UserVotes(ctx context.Context, userID string, recipeIDs []string) (map[string]string, error)
	UpVotedRecipeIDs(ctx context.Context, userID string) ([]string, error)
	UpVoterIDs(ctx context.Context, recipeIDs []string) ([]string, error)
	CountUpvotesReceived(ctx context.Context, ownerID string) (int64, error)
}

// PostgresVoteRepository implements VoteRepository
type PostgresVoteRepository struct {
	db *gorm.DB
}

func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

func (r *PostgresVoteRepository) GetVote(ctx context.Context, recipeID, userID string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, userID).First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

// CreateVote inserts a vote; a second vote for the same pair yields ErrConflict.
func (r *PostgresVoteRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	return translate(r.db.WithContext(ctx).Create(vote).Error)
}

func (r *PostgresVoteRepository) UpdateVoteType(ctx context.Context, id, voteType string) error {
	res := r.db.WithContext(ctx).Model(&models.Vote{}).Where("id = ?", id).Update("vote_type", voteType)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresVoteRepository) DeleteVote(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Vote{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type tallyRow struct {
	RecipeID string
	VoteType string
	Count    int64
}

// Tallies counts up and down votes per recipe. Recipes without votes are absent
// from the map.
func (r *PostgresVoteRepository) Tallies(ctx context.Context, recipeIDs []string) (map[string]models.VoteTally, error) {
	result := make(map[string]models.VoteTally)
	if len(recipeIDs) == 0 {
		return result, nil
	}
	var rows []tallyRow
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("recipe_id, vote_type, COUNT(*) AS count").
		Where("recipe_id IN ?", recipeIDs).
		Group("recipe_id, vote_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		t := result[row.RecipeID]
		t.RecipeID = row.RecipeID
		switch row.VoteType {
		case models.VoteUp:
			t.Up += row.Count
		case models.VoteDown:
			t.Down += row.Count
		}
		result[row.RecipeID] = t
	}
	return result, nil
}

// UserVotes maps recipe id to the vote type userID cast on it.
func (r *PostgresVoteRepository) UserVotes(ctx context.Context, userID string, recipeIDs []string) (map[string]string, error) {
	result := make(map[string]string)
	if userID == "" || len(recipeIDs) == 0 {
		return result, nil
	}
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		result[v.RecipeID] = v.VoteType
	}
	return result, nil
}

func (r *PostgresVoteRepository) UpVotedRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND vote_type = ?", userID, models.VoteUp).
		Pluck("recipe_id", &ids).Error
	return ids, err
}

// UpVoterIDs returns one voter id per up vote on the given recipes, so an
// identity appears once for every recipe it up-voted.
func (r *PostgresVoteRepository) UpVoterIDs(ctx context.Context, recipeIDs []string) ([]string, error) {
	var ids []string
	if len(recipeIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("recipe_id IN ? AND vote_type = ?", recipeIDs, models.VoteUp).
		Pluck("user_id", &ids).Error
	return ids, err
}

// CountUpvotesReceived counts up votes on recipes authored by ownerID.
func (r *PostgresVoteRepository) CountUpvotesReceived(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Joins("JOIN recipes ON recipes.id = recipe_votes.recipe_id").
		Where("recipes.user_id = ? AND recipe_votes.vote_type = ?", ownerID, models.VoteUp).
		Count(&count).Error
	return count, err
}
