package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a local identity with a bcrypt password hash. FirebaseUID links
// an external Firebase identity to the same account.
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(128)"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	FirebaseUID  *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID       string
	Email    string
	Username string
	FullName string
}

// Identity returns the identity for this account.
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email, Username: a.Username, FullName: a.FullName}
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JwtCustomClaims are custom claims extending default ones.
type JwtCustomClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity returns the caller described by an access token.
func (c *JwtCustomClaims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Username: c.Username, FullName: c.FullName}
}

// SignupRequest defines the request body for creating a local account
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

// LoginRequest defines the request body for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token to exchange for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// FirebaseLoginRequest carries a Firebase ID token.
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// TokenPair is returned by login, refresh and firebase-login.
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	User         AccountUser `json:"user"`
}

// AccountUser is the account summary returned with tokens.
type AccountUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}
