package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedRecipe represents a bookmarked recipe
type SavedRecipe struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"user_id" gorm:"type:varchar(128);index;uniqueIndex:idx_user_recipe_save"`
	RecipeID  string    `json:"recipe_id" gorm:"type:uuid;index;uniqueIndex:idx_user_recipe_save"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *SavedRecipe) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
