package models

import "time"

// Profile is the public-facing record linked to an identity. Its ID is the
// identity id issued by the auth provider.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(128)"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	FullName  string    `json:"full_name" gorm:"type:varchar(100)"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileCompact is the author summary embedded in recipe and activity payloads.
type ProfileCompact struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// PublicProfile hides the email address from other users.
type PublicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) ToCompact() ProfileCompact {
	return ProfileCompact{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
	}
}

func (p *Profile) ToPublic() PublicProfile {
	return PublicProfile{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
}

// UpdateProfileRequest defines the request body for updating the caller's profile
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// UserStats aggregates counters shown on a profile page.
type UserStats struct {
	UserID          string `json:"user_id"`
	FollowersCount  int64  `json:"followers_count"`
	FollowingCount  int64  `json:"following_count"`
	RecipesCount    int64  `json:"recipes_count"`
	UpvotesReceived int64  `json:"upvotes_received"`
}
