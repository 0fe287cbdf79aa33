package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/middleware"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/shreyasiddheshwar12/orangesample/utils"
	"github.com/sirupsen/logrus"
)

// codes whose status differs from their kind's default
var codeStatus = map[string]int{
	"USER_EXISTS": http.StatusConflict,
}

func respondError(c *gin.Context, status int, code, message string) {
	c.PureJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondServiceError writes the envelope for an error returned by a service
func respondServiceError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	se, ok := services.AsServiceError(err)
	if !ok {
		_ = c.Error(err)
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unexpected service failure")
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "An internal error occurred")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(se, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(se, services.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(se, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(se, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(se, services.ErrUnauthenticated):
		status = http.StatusUnauthorized
	}
	if override, ok := codeStatus[se.Code]; ok {
		status = override
	}

	respondError(c, status, se.Code, se.Message)
}

// currentActor resolves the registered user behind the request token. On
// failure the response has been written and ok is false.
func currentActor(c *gin.Context) (models.Actor, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return models.Actor{}, false
	}

	actor, err := services.GetIdentityService().CurrentActor(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return models.Actor{}, false
	}
	return actor, true
}

func bindingError(c *gin.Context, err error) {
	c.PureJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}
