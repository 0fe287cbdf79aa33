package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "orange-marketplace",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID, role, accessToken string) {
	c.Set("user_id", userID)
	c.Set("access_token", accessToken)
	c.Set("validated_claims", MockValidatedClaims(userID, role, nil))
}

// MockAuthMiddleware stands in for EnsureValidToken and authenticates every
// request as userID. An empty userID leaves the request anonymous.
func MockAuthMiddleware(userID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			SetMockAuthContext(c, userID, role, accessToken)
		}
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
