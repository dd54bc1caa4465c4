package repositories

import (
	"context"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"gorm.io/gorm"
)

// SavedRecipeRepository defines the interface for saved recipe operations
type SavedRecipeRepository interface {
	SaveRecipe(ctx context.Context, saved *models.SavedRecipe) error
	UnsaveRecipe(ctx context.Context, userID, recipeID string) error
	IsRecipeSaved(ctx context.Context, userID, recipeID string) (bool, error)
	GetSavedRecipeIDs(ctx context.Context, userID string) ([]string, error)
	GetSavedSet(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error)
}

// PostgresSavedRecipeRepository implements SavedRecipeRepository
type PostgresSavedRecipeRepository struct {
	db *gorm.DB
}

func NewPostgresSavedRecipeRepository(db *gorm.DB) *PostgresSavedRecipeRepository {
	return &PostgresSavedRecipeRepository{db: db}
}

func (r *PostgresSavedRecipeRepository) SaveRecipe(ctx context.Context, saved *models.SavedRecipe) error {
	return translate(r.db.WithContext(ctx).Create(saved).Error)
}

func (r *PostgresSavedRecipeRepository) UnsaveRecipe(ctx context.Context, userID, recipeID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.SavedRecipe{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSavedRecipeRepository) IsRecipeSaved(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedRecipe{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, translate(err)
}

// GetSavedRecipeIDs returns the ids saved by userID, most recently saved first.
func (r *PostgresSavedRecipeRepository) GetSavedRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("recipe_id", &ids).Error
	return ids, err
}

func (r *PostgresSavedRecipeRepository) GetSavedSet(ctx context.Context, userID string, recipeIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if userID == "" || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
