package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

var testJWTConfig = JWTConfig{
	Secret:   []byte("test-secret"),
	TokenTTL: time.Hour,
}

func TestIssueToken_RoundTrip(t *testing.T) {
	token, expiresAt, err := IssueToken(testJWTConfig, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	ownerID, err := ValidateToken(testJWTConfig, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", ownerID)

	// клиент читает владельца из того же токена без проверки подписи
	clientOwner, err := api.OwnerFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", clientOwner)
}

func TestIssueToken_RequiresOwner(t *testing.T) {
	_, _, err := IssueToken(testJWTConfig, "")
	assert.Error(t, err)
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims api.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	tests := []struct {
		name      string
		token     func(t *testing.T) string
		wantOwner string
		wantErr   bool
	}{
		{
			name: "owner claim",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, testJWTConfig.Secret, api.TokenClaims{OwnerID: "user-1", RegisteredClaims: valid})
			},
			wantOwner: "user-1",
		},
		{
			name: "subject fallback",
			token: func(t *testing.T) string {
				claims := valid
				claims.Subject = "user-2"
				return sign(t, jwt.SigningMethodHS256, testJWTConfig.Secret, api.TokenClaims{RegisteredClaims: claims})
			},
			wantOwner: "user-2",
		},
		{
			name: "no owner",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, testJWTConfig.Secret, api.TokenClaims{RegisteredClaims: valid})
			},
			wantErr: true,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("other"), api.TokenClaims{OwnerID: "user-1", RegisteredClaims: valid})
			},
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				expired := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}
				return sign(t, jwt.SigningMethodHS256, testJWTConfig.Secret, api.TokenClaims{OwnerID: "user-1", RegisteredClaims: expired})
			},
			wantErr: true,
		},
		{
			name: "unsigned",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, api.TokenClaims{OwnerID: "user-1", RegisteredClaims: valid})
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not-a-token" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ownerID, err := ValidateToken(testJWTConfig, tt.token(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, ownerID)
		})
	}
}

func TestValidateToken_UsesServerClock(t *testing.T) {
	token, _, err := IssueToken(testJWTConfig, "user-1")
	require.NoError(t, err)

	orig := timex.Now
	t.Cleanup(func() { timex.Now = orig })
	timex.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = ValidateToken(testJWTConfig, token)
	assert.Error(t, err, "token expires by server clock")
}
