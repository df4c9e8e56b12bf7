package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Valid rejects expired tokens and tokens without an expiry.
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt == 0 {
		return errors.New("token has no expiry")
	}
	return c.StandardClaims.Valid()
}

var errInvalidToken = &models.ErrUnauthorized{Message: "Token is not valid"}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoker TokenRevoker
}

func NewTokenService(secret string, ttl time.Duration, revoker TokenRevoker) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, revoker: revoker}
}

// Issue signs a token for the subject.
func (s *TokenService) Issue(subject primitive.ObjectID, role string) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaims{
		UserID: subject.Hex(),
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, expiry and revocation, and returns the claims.
func (s *TokenService) Parse(ctx context.Context, tokenString string) (*JwtCustomClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, errInvalidToken
	}
	return claims, nil
}

// Revoke invalidates a token for the rest of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	return s.revoker.Revoke(ctx, tokenString, time.Unix(claims.ExpiresAt, 0))
}

func (s *TokenService) parse(tokenString string) (*JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil, errInvalidToken
	}
	return claims, nil
}
