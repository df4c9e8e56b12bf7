package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://crm.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "crm", cfg.DBName)
	assert.Equal(t, []string{"https://crm.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.BreakGlassEnabled())
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"memory store", Config{JWTSecret: "x", DBDriver: "memory"}, true},
		{"mongo in development without uri", Config{JWTSecret: "x", DBDriver: "mongo", Env: "development"}, true},
		{"mongo in production without uri", Config{JWTSecret: "x", DBDriver: "mongo", Env: "production"}, false},
		{"unknown driver", Config{JWTSecret: "x", DBDriver: "sqlite"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBreakGlassEnabled(t *testing.T) {
	assert.True(t, (&Config{BreakGlassEmail: "a@b.c", BreakGlassPasswordHash: "$2a$..."}).BreakGlassEnabled())
	assert.False(t, (&Config{BreakGlassEmail: "a@b.c"}).BreakGlassEnabled())
}
