package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeRepository defines the interface for recipe data operations.
// List methods return the page and the total number of matching rows.
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipeByID(ctx context.Context, id string) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error

	ListPublic(ctx context.Context, offset, limit int) ([]models.Recipe, int64, error)
	ListPublicByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]models.Recipe, int64, error)
	ListVisibleByIDs(ctx context.Context, ids []string, viewerID string, offset, limit int) ([]models.Recipe, int64, error)
	ListPublicSince(ctx context.Context, since time.Time) ([]models.Recipe, error)
	ListPublicByHashtag(ctx context.Context, tag string, offset, limit int) ([]models.Recipe, int64, error)
	SearchPublic(ctx context.Context, query string, limit int) ([]models.Recipe, error)

	OwnerIDs(ctx context.Context, recipeIDs []string) ([]string, error)
	CountByOwner(ctx context.Context, ownerID string, includePrivate bool) (int64, error)
}

// PostgresRecipeRepository implements RecipeRepository for PostgreSQL
type PostgresRecipeRepository struct {
	db *gorm.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository
func NewPostgresRecipeRepository(db *gorm.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

func (r *PostgresRecipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	return translate(r.db.WithContext(ctx).Create(recipe).Error)
}

func (r *PostgresRecipeRepository) GetRecipeByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recipe).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

// UpdateRecipe saves every column except the owner, which is create-only.
func (r *PostgresRecipeRepository) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	res := r.db.WithContext(ctx).Model(recipe).Select("*").Omit("id", "user_id", "created_at").Updates(recipe)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRecipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Recipe{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublic returns public recipes, newest first
func (r *PostgresRecipeRepository) ListPublic(ctx context.Context, offset, limit int) ([]models.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("is_public = ?", true)
	return paginate(q, offset, limit)
}

// ListPublicByOwners returns public recipes authored by any of ownerIDs, newest first
func (r *PostgresRecipeRepository) ListPublicByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]models.Recipe, int64, error) {
	if len(ownerIDs) == 0 {
		return []models.Recipe{}, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("is_public = ? AND user_id IN ?", true, ownerIDs)
	return paginate(q, offset, limit)
}

// ListVisibleByIDs returns recipes among ids that are public or owned by viewerID, newest first
func (r *PostgresRecipeRepository) ListVisibleByIDs(ctx context.Context, ids []string, viewerID string, offset, limit int) ([]models.Recipe, int64, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id IN ?", ids).
		Where("is_public = ? OR user_id = ?", true, viewerID)
	return paginate(q, offset, limit)
}

// ListPublicSince returns every public recipe created at or after since, newest first.
func (r *PostgresRecipeRepository) ListPublicSince(ctx context.Context, since time.Time) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Where("is_public = ? AND created_at >= ?", true, since).
		Order("created_at DESC").
		Find(&recipes).Error
	return recipes, err
}

// ListPublicByHashtag matches #tag in the description or brewing notes
func (r *PostgresRecipeRepository) ListPublicByHashtag(ctx context.Context, tag string, offset, limit int) ([]models.Recipe, int64, error) {
	pattern := "%#" + escapeLike(strings.ToLower(strings.TrimPrefix(tag, "#"))) + "%"
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("is_public = ?", true).
		Where("LOWER(description) LIKE ? OR LOWER(COALESCE(brewing_notes, '')) LIKE ?", pattern, pattern)
	return paginate(q, offset, limit)
}

// SearchPublic does a case-insensitive substring match over name, description and notes.
func (r *PostgresRecipeRepository) SearchPublic(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Where("LOWER(recipe_name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(COALESCE(aroma_notes, '')) LIKE ? OR LOWER(COALESCE(brewing_notes, '')) LIKE ?",
			pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

// OwnerIDs returns the distinct authors of the given recipes.
func (r *PostgresRecipeRepository) OwnerIDs(ctx context.Context, recipeIDs []string) ([]string, error) {
	var ids []string
	if len(recipeIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id IN ?", recipeIDs).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PostgresRecipeRepository) CountByOwner(ctx context.Context, ownerID string, includePrivate bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", ownerID)
	if !includePrivate {
		q = q.Where("is_public = ?", true)
	}
	err := q.Count(&count).Error
	return count, err
}

func paginate(q *gorm.DB, offset, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recipes []models.Recipe
	err := q.Session(&gorm.Session{}).Order("created_at DESC").Offset(offset).Limit(limit).Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}
