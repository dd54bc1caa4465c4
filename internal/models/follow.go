package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge from follower to followee
type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	FollowerID  string    `json:"follower_id" gorm:"type:varchar(128);index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"following_id" gorm:"type:varchar(128);index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FollowerCount pairs an identity with how many followers it has.
type FollowerCount struct {
	UserID string
	Count  int64
}
