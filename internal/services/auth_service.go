package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/whatsyourrecipe/backend/internal/cache"
	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService manages local accounts, token exchange and bearer authentication.
type AuthService struct {
	accounts repositories.AccountRepository
	tokens   *TokenManager
	firebase FirebaseVerifier
	revoked  cache.Cache
}

// NewAuthService builds the service. firebase may be nil when Firebase is not
// configured; revoked may be cache.Nop, which makes logout client-side only.
func NewAuthService(accounts repositories.AccountRepository, tokens *TokenManager, firebase FirebaseVerifier, revoked cache.Cache) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, firebase: firebase, revoked: revoked}
}

// Signup creates a local account.
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.Account, error) {
	if _, err := s.accounts.GetAccountByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &models.Account{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Username:     req.Username,
		FullName:     req.FullName,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Login checks the password and issues a token pair. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.tokens.Issue(account)
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, ErrInvalidToken
	}
	account, err := s.accounts.GetAccountByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	s.revoke(ctx, claims)
	return s.tokens.Issue(account)
}

// FirebaseLogin verifies a Firebase ID token and issues a local token pair
// for the linked account, creating or linking one by email when needed.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.TokenPair, error) {
	account, err := s.firebaseAccount(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(account)
}

func (s *AuthService) firebaseAccount(ctx context.Context, idToken string) (*models.Account, error) {
	if s.firebase == nil {
		return nil, ErrInvalidToken
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("firebase token rejected")
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.GetAccountByFirebaseUID(ctx, token.UID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup firebase account: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	if email != "" {
		account, err = s.accounts.GetAccountByEmail(ctx, email)
		if err == nil {
			if err := s.accounts.LinkFirebaseUID(ctx, account.ID, token.UID); err != nil {
				return nil, fmt.Errorf("link firebase uid: %w", err)
			}
			return account, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
	}

	uid := token.UID
	account = &models.Account{
		ID:          uid,
		Email:       email,
		FullName:    name,
		FirebaseUID: &uid,
	}
	if account.Email == "" {
		account.Email = uid + "@firebase.local"
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Created by a concurrent request.
			return s.accounts.GetAccountByFirebaseUID(ctx, uid)
		}
		return nil, fmt.Errorf("create firebase account: %w", err)
	}
	return account, nil
}

// Authenticate resolves a bearer token to an identity. Local access tokens are
// tried first, then Firebase ID tokens when Firebase is configured.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (models.Identity, *models.JwtCustomClaims, error) {
	claims, err := s.tokens.Parse(bearer, models.TokenTypeAccess)
	if err == nil {
		if s.isRevoked(ctx, claims.ID) {
			return models.Identity{}, nil, ErrInvalidToken
		}
		return claims.Identity(), claims, nil
	}
	if s.firebase == nil {
		return models.Identity{}, nil, ErrInvalidToken
	}
	account, err := s.firebaseAccount(ctx, bearer)
	if err != nil {
		return models.Identity{}, nil, err
	}
	return account.Identity(), nil, nil
}

// Logout revokes the access token until it expires. Firebase sessions have no
// local claims and are left to the client.
func (s *AuthService) Logout(ctx context.Context, claims *models.JwtCustomClaims) {
	if claims != nil {
		s.revoke(ctx, claims)
	}
}

func (s *AuthService) revoke(ctx context.Context, claims *models.JwtCustomClaims) {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.revoked.Set(ctx, "revoked:"+claims.ID, true, ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to revoke token")
	}
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}
	var revoked bool
	found, err := s.revoked.Get(ctx, "revoked:"+jti, &revoked)
	return err == nil && found && revoked
}
