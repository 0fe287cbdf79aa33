package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/shreyasiddheshwar12/orangesample/services"
)

// UpsertCreatorProfile handles POST /api/v1/creator/profile
func UpsertCreatorProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body models.CreatorProfile
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}

	profile, err := services.GetProfileService().UpsertCreatorProfile(c.Request.Context(), actor, body)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, profile)
}

// GetMyCreatorProfile handles GET /api/v1/creator/profile
func GetMyCreatorProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	profile, err := services.GetProfileService().GetCreatorProfileByUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, profile)
}

// UpsertBusinessProfile handles POST /api/v1/business/profile
func UpsertBusinessProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body models.BusinessProfile
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}

	profile, err := services.GetProfileService().UpsertBusinessProfile(c.Request.Context(), actor, body)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, profile)
}

// GetMyBusinessProfile handles GET /api/v1/business/profile
func GetMyBusinessProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	profile, err := services.GetProfileService().GetBusinessProfileByUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, profile)
}

// ListCreators handles GET /api/v1/creators - the public creator directory
func ListCreators(c *gin.Context) {
	filter := services.CreatorFilter{
		Niche:    c.Query("niche"),
		Location: c.Query("location"),
	}

	var ok bool
	if filter.MinFollowers, ok = optionalInt(c, "minFollowers"); !ok {
		return
	}
	if filter.MaxFollowers, ok = optionalInt(c, "maxFollowers"); !ok {
		return
	}
	if v := c.Query("openToBarter"); v != "" {
		b, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "openToBarter must be true or false")
			return
		}
		filter.OpenToBarter = &b
	}

	limit, ok := optionalInt(c, "limit")
	if !ok {
		return
	}
	if limit != nil {
		if *limit < 1 || *limit > services.MaxCreatorPageSize {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100")
			return
		}
		filter.Limit = *limit
	}

	skip, ok := optionalInt(c, "skip")
	if !ok {
		return
	}
	if skip != nil {
		filter.Skip = *skip
	}

	creators, err := services.GetProfileService().ListCreators(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, creators)
}

// optionalInt parses a non-negative integer query parameter. On a bad value the
// response has been written and ok is false.
func optionalInt(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a non-negative integer")
		return nil, false
	}
	return &v, true
}

// GetCreator handles GET /api/v1/creators/:id
func GetCreator(c *gin.Context) {
	profile, err := services.GetProfileService().GetCreatorProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, profile)
}

// GetBusiness handles GET /api/v1/businesses/:id
func GetBusiness(c *gin.Context) {
	profile, err := services.GetProfileService().GetBusinessProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, profile)
}
