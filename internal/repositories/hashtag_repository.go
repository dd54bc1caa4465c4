package repositories

import (
	"context"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"gorm.io/gorm"
)

// HashtagRepository reads the trigger-maintained hashtag counters.
type HashtagRepository interface {
	Trending(ctx context.Context, limit int) ([]models.Hashtag, error)
}

type PostgresHashtagRepository struct {
	db *gorm.DB
}

func NewPostgresHashtagRepository(db *gorm.DB) *PostgresHashtagRepository {
	return &PostgresHashtagRepository{db: db}
}

// Trending orders tags by usage, then by most recent use.
func (r *PostgresHashtagRepository) Trending(ctx context.Context, limit int) ([]models.Hashtag, error) {
	var tags []models.Hashtag
	err := r.db.WithContext(ctx).
		Order("usage_count DESC, last_used DESC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}
