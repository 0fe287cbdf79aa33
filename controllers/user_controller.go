package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/middleware"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/sirupsen/logrus"
)

// RegisterUserRequest represents the optional body of POST /api/v1/users.
// Token claims win over body fields.
type RegisterUserRequest struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateUser handles POST /api/v1/users - registers the token subject as a creator or business
func CreateUser(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindingError(c, err)
		return
	}

	claims := middleware.GetCustomClaims(c)
	user := models.User{
		ID:    userID,
		Role:  firstNonEmpty(claims.Role, req.Role),
		Name:  firstNonEmpty(claims.Name, req.Name),
		Email: firstNonEmpty(claims.Email, req.Email),
	}

	// Auth0 access tokens carry no profile; ask the tenant
	if userInfo := services.GetUserInfoService(); userInfo != nil && (user.Email == "" || user.Name == "") {
		accessToken, err := middleware.GetAccessToken(c)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
			return
		}

		info, err := userInfo.GetUserInfo(c.Request.Context(), accessToken)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Userinfo lookup failed")
			respondError(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
			return
		}
		user.Email = firstNonEmpty(user.Email, info.Email)
		user.Name = firstNonEmpty(user.Name, info.Name)
	}

	created, err := services.GetIdentityService().RegisterUser(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, created)
}

// GetMyProfile handles GET /api/v1/users/me - the account behind the token
func GetMyProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	user, err := services.GetIdentityService().GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
