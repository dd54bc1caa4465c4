package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote represents a single up or down vote on a recipe
type Vote struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	RecipeID  string    `json:"recipe_id" gorm:"type:uuid;index;uniqueIndex:idx_recipe_voter"`
	UserID    string    `json:"user_id" gorm:"type:varchar(128);index;uniqueIndex:idx_recipe_voter"`
	VoteType  string    `json:"vote_type" gorm:"type:varchar(4);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Vote) TableName() string { return "recipe_votes" }

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// VoteRequest defines the request body for voting on a recipe
type VoteRequest struct {
	RecipeID string `json:"recipe_id" validate:"required,uuid"`
	VoteType string `json:"vote_type" validate:"required,oneof=up down"`
}

// VoteTally holds the up and down counts for one recipe.
type VoteTally struct {
	RecipeID string `json:"recipe_id"`
	Up       int64  `json:"up"`
	Down     int64  `json:"down"`
}

// Score is up votes minus down votes.
func (t VoteTally) Score() int64 {
	return t.Up - t.Down
}
