package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	UpdateAvatarURL(ctx context.Context, id, url string) error
	SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error)
	ListProfiles(ctx context.Context, exclude []string, limit int) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// CreateProfile inserts a profile. A duplicate id or username yields ErrConflict.
func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Create(profile).Error)
}

func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// GetProfilesByIDs returns the profiles that exist among ids, in no particular order.
func (r *PostgresProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	var profiles []models.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

// UpdateProfile writes the editable columns of profile.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"username":  profile.Username,
			"full_name": profile.FullName,
			"bio":       profile.Bio,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) UpdateAvatarURL(ctx context.Context, id, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("avatar_url", url)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchProfiles matches username or full name, case-insensitively
func (r *PostgresProfileRepository) SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

// ListProfiles returns up to limit profiles whose id is not in exclude.
func (r *PostgresProfileRepository) ListProfiles(ctx context.Context, exclude []string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	q := r.db.WithContext(ctx).Model(&models.Profile{})
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
