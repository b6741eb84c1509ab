package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityRouter(m *Middleware) *gin.Engine {
	r := gin.New()
	r.Use(m.RequestID(), m.Identity())
	r.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	return r
}

func TestIdentity_ClientHeader(t *testing.T) {
	r := identityRouter(newTestMiddleware(t, testConfig()))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"client id", "user-7", "user-7"},
		{"trimmed", "  user-7 ", "user-7"},
		{"missing falls back to anonymous", "", AnonymousUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("X-Client-ID", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestIdentity_BearerToken(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	r := identityRouter(newTestMiddleware(t, cfg))
	secret := []byte(cfg.Auth.JWTSecret)

	valid, err := IssueToken("user-42", secret, cfg.Auth.Issuer, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken("user-42", secret, cfg.Auth.Issuer, -time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := IssueToken("user-42", secret, "someone-else", time.Hour)
	require.NoError(t, err)
	wrongKey, err := IssueToken("user-42", []byte("other-secret"), cfg.Auth.Issuer, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		auth       string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "user-42"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong issuer", "Bearer " + wrongIssuer, http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			// the client header is ignored once auth is on
			req.Header.Set("X-Client-ID", "spoofed")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.Equal(t, errors.CodeUnauthorized, decodeError(t, w).Code)
			}
		})
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "user-1"})
	raw, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(raw, []byte("secret"), "")
	assert.Error(t, err)
}

func TestParseToken_RequiresSubject(t *testing.T) {
	raw, err := IssueToken("", []byte("secret"), "", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(raw, []byte("secret"), "")
	assert.ErrorContains(t, err, "no subject")
}
