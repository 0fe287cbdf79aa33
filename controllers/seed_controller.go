package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/services"
)

// SeedDatabase handles POST /api/v1/seed - wipes the database and loads demo data
func SeedDatabase(c *gin.Context) {
	seeder := services.GetSeeder()
	if seeder == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Seeding is disabled")
		return
	}

	result, err := seeder.Seed(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result)
}
