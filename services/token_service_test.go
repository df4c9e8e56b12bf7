package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, NewMemoryRevoker())
	id := primitive.NewObjectID()

	token, err := svc.Issue(id, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestTokenService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService("secret", time.Hour, NewMemoryRevoker())
	valid, err := svc.Issue(primitive.NewObjectID(), models.RoleStaff)
	require.NoError(t, err)

	expired, err := NewTokenService("secret", -time.Minute, NewMemoryRevoker()).Issue(primitive.NewObjectID(), models.RoleStaff)
	require.NoError(t, err)

	otherKey, err := NewTokenService("other", time.Hour, NewMemoryRevoker()).Issue(primitive.NewObjectID(), models.RoleStaff)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   models.RoleStaff,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":       expired,
		"wrong key":     otherKey,
		"no expiry":     noExpiry,
		"garbage":       "not-a-token",
		"tampered body": tamper(valid, otherKey),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Parse(ctx, token)
			assert.ErrorIs(t, err, errInvalidToken)
		})
	}
}

// tamper swaps the payload of token for the payload of donor.
func tamper(token, donor string) string {
	parts := strings.Split(token, ".")
	parts[1] = strings.Split(donor, ".")[1]
	return strings.Join(parts, ".")
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService("secret", time.Hour, NewMemoryRevoker())
	token, err := svc.Issue(primitive.NewObjectID(), models.RoleStaff)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))
	_, err = svc.Parse(ctx, token)
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestMemoryRevoker_Cleanup(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()
	now := time.Now()

	require.NoError(t, r.Revoke(ctx, "short", now.Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "long", now.Add(time.Hour)))

	r.Cleanup(now.Add(2 * time.Minute))

	revoked, err := r.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = r.IsRevoked(ctx, "long")
	require.NoError(t, err)
	assert.True(t, revoked)
}
