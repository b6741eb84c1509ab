package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AnonymousUser is the identity of requests that carry none
const AnonymousUser = "anonymous"

const clientIDHeader = "X-Client-ID"

// Identity resolves the calling user. With auth enabled a valid bearer token
// is required and its subject is the user id. Otherwise the X-Client-ID
// header names the user, falling back to AnonymousUser.
func (m *Middleware) Identity() gin.HandlerFunc {
	secret := []byte(m.config.Auth.JWTSecret)

	return func(c *gin.Context) {
		var userID string

		if m.config.Auth.Enabled {
			raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
			if !ok || raw == "" {
				m.abort(c, errors.NewUnauthorizedError("Missing bearer token"))
				return
			}
			subject, err := ParseToken(raw, secret, m.config.Auth.Issuer)
			if err != nil {
				LoggerFrom(c).Debug("Rejected bearer token", zap.Error(err))
				m.abort(c, errors.NewUnauthorizedError("Invalid bearer token"))
				return
			}
			userID = subject
		} else {
			userID = strings.TrimSpace(c.GetHeader(clientIDHeader))
		}

		if userID == "" {
			userID = AnonymousUser
		}
		c.Set(UserIDKey, userID)

		c.Next()
	}
}

// UserID returns the identity resolved by Identity
func UserID(c *gin.Context) string {
	if id := c.GetString(UserIDKey); id != "" {
		return id
	}
	return AnonymousUser
}

func (m *Middleware) abort(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode(), errors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
}

// ParseToken verifies an HS256 token and returns its subject
func ParseToken(raw string, secret []byte, issuer string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// IssueToken signs an HS256 token for subject
func IssueToken(subject string, secret []byte, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
