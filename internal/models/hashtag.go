package models

import "time"

// Hashtag counts how often a #tag appears in recipe text. Rows are written by
// a database trigger on recipe insert.
type Hashtag struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	Tag        string    `json:"tag" gorm:"type:varchar(100);uniqueIndex"`
	UsageCount int64     `json:"usage_count"`
	LastUsed   time.Time `json:"last_used"`
	CreatedAt  time.Time `json:"created_at"`
}
