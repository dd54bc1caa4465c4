package services

import (
	"errors"

	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

var (
	ErrNotFound    = repositories.ErrNotFound
	ErrConflict    = repositories.ErrConflict
	ErrUnavailable = repositories.ErrUnavailable

	ErrForbidden          = errors.New("not allowed to modify this resource")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
