package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/config"
	"github.com/venditio/crm-api/internal/domain"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func defaultClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-123",
		"name":  "Sam Sales",
		"email": "sam@example.com",
		"role":  "sales",
		"iss":   "https://idp.example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestValidateToken(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "https://idp.example.com",
	})

	userCtx, err := validator.ValidateToken(signToken(t, testSecret, defaultClaims()))
	require.NoError(t, err)

	assert.Equal(t, "user-123", userCtx.UserID)
	assert.Equal(t, "Sam Sales", userCtx.DisplayName)
	assert.Equal(t, "sam@example.com", userCtx.Email)
	assert.Equal(t, domain.RoleSales, userCtx.Role)
}

func TestValidateTokenFailures(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "https://idp.example.com",
	})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name: "expired token",
			token: signToken(t, testSecret, jwt.MapClaims{
				"sub":  "user-123",
				"role": "sales",
				"iss":  "https://idp.example.com",
				"exp":  time.Now().Add(-time.Hour).Unix(),
			}),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "wrong signing key",
			token:   signToken(t, "other-secret", defaultClaims()),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage token",
			token:   "not.a.jwt",
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong issuer",
			token: func() string {
				claims := defaultClaims()
				claims["iss"] = "https://evil.example.com"
				return signToken(t, testSecret, claims)
			}(),
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing subject",
			token: func() string {
				claims := defaultClaims()
				delete(claims, "sub")
				return signToken(t, testSecret, claims)
			}(),
			wantErr: ErrInvalidToken,
		},
		{
			name: "unknown role",
			token: func() string {
				claims := defaultClaims()
				claims["role"] = "superuser"
				return signToken(t, testSecret, claims)
			}(),
			wantErr: ErrMissingRole,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.ValidateToken(tc.token)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateTokenFallbackClaims(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":                "user-456",
		"preferred_username": "pat",
		"upn":                "pat@corp.example",
		"role":               "admin",
		"exp":                time.Now().Add(time.Hour).Unix(),
	})

	userCtx, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "pat", userCtx.DisplayName)
	assert.Equal(t, "pat@corp.example", userCtx.Email)
	assert.True(t, userCtx.IsAdmin())
}

func TestCanActOn(t *testing.T) {
	admin := &UserContext{UserID: "admin-1", Role: domain.RoleAdmin}
	sales := &UserContext{UserID: "sales-1", Role: domain.RoleSales}

	assert.True(t, admin.CanActOn("someone-else"))
	assert.True(t, sales.CanActOn("sales-1"))
	assert.False(t, sales.CanActOn("sales-2"))
}
