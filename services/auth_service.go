package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

var bcryptCost = 12

// BreakGlass is an emergency admin account configured outside the identity
// store. Its tokens carry models.BreakGlassID as subject.
type BreakGlass struct {
	Email        string
	Password     string
	PasswordHash string
	Name         string
}

// Enabled reports whether the account can log in.
func (b BreakGlass) Enabled() bool {
	return b.Email != "" && (b.Password != "" || b.PasswordHash != "")
}

func (b BreakGlass) matches(email, password string) bool {
	if !b.Enabled() || !strings.EqualFold(strings.TrimSpace(email), b.Email) {
		return false
	}
	if b.PasswordHash != "" {
		return CheckPassword(b.PasswordHash, password)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(b.Password)) == 1
}

// Principal is the synthesized admin the break-glass token resolves to.
func (b BreakGlass) Principal() *models.Principal {
	return &models.Principal{
		ID:         models.BreakGlassID,
		Name:       b.Name,
		Email:      b.Email,
		Role:       models.RoleAdmin,
		IsActive:   true,
		BreakGlass: true,
	}
}

// Ref is how break-glass authorship is displayed on records.
func (b BreakGlass) Ref() *models.UserRef {
	return &models.UserRef{ID: models.BreakGlassID, Name: b.Name, Email: b.Email}
}

var (
	errInvalidCredentials = &models.ErrUnauthorized{Message: "Invalid credentials"}
	errInactivePrincipal  = &models.ErrUnauthorized{Message: "User not found or inactive"}
)

// AuthService logs users in and resolves bearer tokens to principals.
type AuthService struct {
	users      *repositories.UserRepository
	tokens     *TokenService
	breakGlass BreakGlass
	logger     *zap.Logger
}

func NewAuthService(users *repositories.UserRepository, tokens *TokenService, breakGlass BreakGlass, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, breakGlass: breakGlass, logger: logger}
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if s.breakGlass.matches(req.Email, req.Password) {
		token, err := s.tokens.Issue(models.BreakGlassID, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("break-glass admin login", zap.String("email", s.breakGlass.Email))
		return &models.LoginResponse{Token: token, User: s.breakGlass.Principal()}, nil
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !CheckPassword(user.Password, req.Password) {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, &models.ErrUnauthorized{Message: "Account is inactive"}
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, User: models.PrincipalFromUser(user)}, nil
}

// Authenticate resolves a bearer token to an active principal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, errInvalidToken
	}

	if id == models.BreakGlassID {
		if !s.breakGlass.Enabled() {
			return nil, errInvalidToken
		}
		return s.breakGlass.Principal(), nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errInactivePrincipal
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, errInactivePrincipal
	}
	return models.PrincipalFromUser(user), nil
}

// Logout revokes the token until it expires.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// BreakGlassRef returns the display reference for break-glass authorship, or
// nil when break-glass is disabled.
func (s *AuthService) BreakGlassRef() *models.UserRef {
	if !s.breakGlass.Enabled() {
		return nil
	}
	return s.breakGlass.Ref()
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a candidate password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
