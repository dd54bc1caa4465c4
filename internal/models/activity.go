package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityRecipeCreated = "recipe_created"
	ActivityRecipeUpvoted = "recipe_upvoted"
	ActivityUserFollowed  = "user_followed"
	ActivityRecipeSaved   = "recipe_saved"
)

// Activity is an append-only log entry stored in MongoDB
type Activity struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       string             `json:"user_id" bson:"user_id"`
	ActivityType string             `json:"activity_type" bson:"activity_type"`
	Content      string             `json:"content" bson:"content"`
	RecipeID     string             `json:"recipe_id,omitempty" bson:"recipe_id,omitempty"`
	TargetUserID string             `json:"target_user_id,omitempty" bson:"target_user_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// ActivityView is an activity joined with its actor.
type ActivityView struct {
	Activity
	Actor ProfileCompact `json:"actor"`
}
