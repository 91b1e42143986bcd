package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(ttl time.Duration) *JWTService {
	return NewJWTService(&JWTConfig{
		SecretKey: []byte("test-secret"),
		TokenTTL:  ttl,
		Issuer:    "shortener",
	})
}

func signRaw(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	s := newTestJWTService(time.Hour)

	token, err := s.Issue("operator@example.com")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator@example.com", claims.Subject)
	assert.Equal(t, "shortener", claims.Issuer)

	_, err = s.Issue("")
	assert.Error(t, err)
}

func TestJWTService_Rejects(t *testing.T) {
	s := newTestJWTService(time.Hour)
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{
			name:  "garbage",
			token: "not.a.jwt",
			want:  ErrInvalidToken,
		},
		{
			name: "wrong_secret",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{
				Subject: "x", Issuer: "shortener", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			want: ErrInvalidToken,
		},
		{
			name: "expired",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.RegisteredClaims{
				Subject: "x", Issuer: "shortener", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			}),
			want: ErrExpiredToken,
		},
		{
			name: "wrong_issuer",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.RegisteredClaims{
				Subject: "x", Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			want: ErrInvalidToken,
		},
		{
			name: "missing_subject",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.RegisteredClaims{
				Issuer: "shortener", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			want: ErrInvalidToken,
		},
		{
			name: "hs512_not_allowed",
			token: signRaw(t, jwt.SigningMethodHS512, []byte("test-secret"), jwt.RegisteredClaims{
				Subject: "x", Issuer: "shortener", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			want: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromBearer("Bearer abc"))
	assert.Empty(t, ExtractTokenFromBearer("Bearer "))
	assert.Empty(t, ExtractTokenFromBearer("Basic abc"))
	assert.Empty(t, ExtractTokenFromBearer(""))
}
